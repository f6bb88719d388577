package qbittorrent

import (
	"context"
	"net/url"
	"strings"
)

// Categories lists the categories known to the daemon, keyed by name.
// Requires api v2 >= 2.1.1; older daemons never exposed a listing.
func (c *Client) Categories(ctx context.Context) (map[string]Category, error) {
	categories := make(map[string]Category)
	if err := c.getJSON(ctx, opCategories, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// AddCategory creates a category. The save path is v2-only; legacy daemons
// accept the name alone.
func (c *Client) AddCategory(ctx context.Context, name, savePath string) error {
	cap, err := c.ready(ctx)
	if err != nil {
		return err
	}
	form := url.Values{}
	form.Set("category", name)
	if savePath != "" && cap.Generation == GenV2 {
		form.Set("savePath", savePath)
	}
	return c.command(ctx, opAddCategory, nil, form)
}

// EditCategory changes a category's save path. Requires api v2 >= 2.1.0.
func (c *Client) EditCategory(ctx context.Context, name, savePath string) error {
	form := url.Values{}
	form.Set("category", name)
	form.Set("savePath", savePath)
	return c.command(ctx, opEditCategory, nil, form)
}

// RemoveCategories deletes categories. Torrents keep their data and lose the
// category assignment.
func (c *Client) RemoveCategories(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return ErrEmptySet
	}
	form := url.Values{}
	// Newline-joined on both generations.
	form.Set("categories", strings.Join(names, "\n"))
	return c.command(ctx, opRemoveCategories, nil, form)
}

// SetCategory assigns the selected torrents to a category. An empty name
// clears the assignment.
func (c *Client) SetCategory(ctx context.Context, hashes Hashes, name string) error {
	form := url.Values{}
	form.Set("category", name)
	return c.command(ctx, opSetCategory, &hashes, form)
}
