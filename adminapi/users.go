package adminapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListUsers returns one page of accounts matching opts.
func (c *Client) ListUsers(ctx context.Context, opts ListUsersOptions) (*UserPage, error) {
	query := url.Values{}
	if opts.Query != "" {
		query.Set("q", opts.Query)
	}
	if opts.Role != "" {
		query.Set("role", opts.Role)
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page UserPage
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches one account by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates an account and returns it as the backend stored it.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update to an account.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

// ActivateUser re-enables a deactivated account.
func (c *Client) ActivateUser(ctx context.Context, id string) (*User, error) {
	return c.setActive(ctx, id, true)
}

// DeactivateUser disables an account without deleting it.
func (c *Client) DeactivateUser(ctx context.Context, id string) (*User, error) {
	return c.setActive(ctx, id, false)
}

func (c *Client) setActive(ctx context.Context, id string, active bool) (*User, error) {
	return c.UpdateUser(ctx, id, UpdateUserRequest{Active: &active})
}
