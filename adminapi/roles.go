package adminapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tokenguard/tokenguard/permission"
)

// ListRoles returns all backend role definitions.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.do(ctx, http.MethodGet, "/roles", nil, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole defines a new backend role.
func (c *Client) CreateRole(ctx context.Context, role Role) (*Role, error) {
	var out Role
	if err := c.do(ctx, http.MethodPost, "/roles", nil, role, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRole removes a backend role. The backend rejects protected roles on
// its own; use [Client.DeleteRoleGuarded] to refuse locally first.
func (c *Client) DeleteRole(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/roles/"+url.PathEscape(name), nil, nil, nil)
}

// AssignRole grants a backend role to a user.
func (c *Client) AssignRole(ctx context.Context, userID, role string) error {
	body := map[string]string{"role": role}
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/roles", nil, body, nil)
}

// RemoveRole revokes a backend role from a user.
func (c *Client) RemoveRole(ctx context.Context, userID, role string) error {
	path := "/users/" + url.PathEscape(userID) + "/roles/" + url.PathEscape(role)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// DeleteRoleGuarded refuses to delete a role the resolver marks protected,
// before any network traffic happens. The check mirrors the server's but
// keeps the UI from offering an action guaranteed to fail.
func (c *Client) DeleteRoleGuarded(ctx context.Context, resolver *permission.Resolver, name string) error {
	if resolver != nil && resolver.IsProtectedRole(name) {
		return ErrProtectedRole
	}
	return c.DeleteRole(ctx, name)
}
