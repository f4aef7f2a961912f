package adminapi

import (
	"context"
	"net/http"
	"net/url"
)

// ExportUserData fetches the GDPR export bundle for a user.
func (c *Client) ExportUserData(ctx context.Context, userID string) (*GDPRExport, error) {
	var export GDPRExport
	if err := c.do(ctx, http.MethodGet, "/gdpr/"+url.PathEscape(userID)+"/export", nil, nil, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// EraseUserData requests GDPR erasure for a user. The backend queues the
// erasure and answers with a receipt; deletion is not instant.
func (c *Client) EraseUserData(ctx context.Context, userID string) (*ErasureReceipt, error) {
	var receipt ErasureReceipt
	if err := c.do(ctx, http.MethodPost, "/gdpr/"+url.PathEscape(userID)+"/erase", nil, nil, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
