package adminapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ListAudit returns one page of the backend audit log matching opts.
func (c *Client) ListAudit(ctx context.Context, opts ListAuditOptions) (*AuditPage, error) {
	query := url.Values{}
	if opts.Actor != "" {
		query.Set("actor", opts.Actor)
	}
	if opts.Action != "" {
		query.Set("action", opts.Action)
	}
	if !opts.Since.IsZero() {
		query.Set("since", opts.Since.UTC().Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		query.Set("until", opts.Until.UTC().Format(time.RFC3339))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page AuditPage
	if err := c.do(ctx, http.MethodGet, "/audit", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
