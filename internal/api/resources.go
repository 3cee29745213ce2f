package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/robby/adminctl/internal/domain"
)

// NavSettingsPath is the endpoint that reports which screens are enabled.
const NavSettingsPath = "settings/nav"

// ListResource returns every row of resource. The API wraps rows in a
// {"data": [...]} envelope; a missing envelope yields no rows.
func (c *Client) ListResource(ctx context.Context, resource string) ([]domain.Row, error) {
	var resp struct {
		Data []domain.Row `json:"data"`
	}
	if err := c.Get(ctx, url.PathEscape(resource), &resp); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	if resp.Data == nil {
		return []domain.Row{}, nil
	}
	return resp.Data, nil
}

// CreateResource posts one record built from a field map.
func (c *Client) CreateResource(ctx context.Context, resource string, values map[string]any) error {
	if err := c.Post(ctx, url.PathEscape(resource), values, nil); err != nil {
		return fmt.Errorf("failed to create %s: %w", resource, err)
	}
	return nil
}

// DeleteResources removes the records with the given ids. The ids travel as a
// JSON array of strings in the "ids" query parameter.
func (c *Client) DeleteResources(ctx context.Context, resource string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode ids: %w", err)
	}
	query := url.Values{"ids": []string{string(encoded)}}
	if err := c.Delete(ctx, url.PathEscape(resource), query, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", resource, err)
	}
	return nil
}

// NavSettings returns the navigation flags sorted by name.
func (c *Client) NavSettings(ctx context.Context) ([]domain.NavItem, error) {
	var resp map[string]bool
	if err := c.Get(ctx, NavSettingsPath, &resp); err != nil {
		return nil, fmt.Errorf("failed to load navigation settings: %w", err)
	}

	items := make([]domain.NavItem, 0, len(resp))
	for name, enabled := range resp {
		items = append(items, domain.NavItem{Name: name, Enabled: enabled})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items, nil
}
