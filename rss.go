package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// RSS management is a v2-only surface; every call here fails with
// UnsupportedError against a legacy daemon or a v2 daemon below 2.1.0.

// RSSRule is an automatic download rule.
type RSSRule struct {
	Enabled                   bool     `json:"enabled"`
	MustContain               string   `json:"mustContain"`
	MustNotContain            string   `json:"mustNotContain"`
	UseRegex                  bool     `json:"useRegex"`
	EpisodeFilter             string   `json:"episodeFilter"`
	SmartFilter               bool     `json:"smartFilter"`
	PreviouslyMatchedEpisodes []string `json:"previouslyMatchedEpisodes,omitempty"`
	AffectedFeeds             []string `json:"affectedFeeds"`
	IgnoreDays                int      `json:"ignoreDays"`
	LastMatch                 string   `json:"lastMatch,omitempty"`
	AddPaused                 bool     `json:"addPaused"`
	AssignedCategory          string   `json:"assignedCategory"`
	SavePath                  string   `json:"savePath"`
}

// AddRSSFolder creates a feed folder. Paths use backslash separators,
// e.g. `linux\isos`.
func (c *Client) AddRSSFolder(ctx context.Context, path string) error {
	form := url.Values{}
	form.Set("path", path)
	return c.command(ctx, opRSSAddFolder, nil, form)
}

// AddRSSFeed subscribes to a feed URL, optionally placing it at a folder
// path.
func (c *Client) AddRSSFeed(ctx context.Context, feedURL, path string) error {
	form := url.Values{}
	form.Set("url", feedURL)
	if path != "" {
		form.Set("path", path)
	}
	return c.command(ctx, opRSSAddFeed, nil, form)
}

// RemoveRSSItem deletes a feed or folder, including any children.
func (c *Client) RemoveRSSItem(ctx context.Context, path string) error {
	form := url.Values{}
	form.Set("path", path)
	return c.command(ctx, opRSSRemoveItem, nil, form)
}

// MoveRSSItem moves or renames a feed or folder.
func (c *Client) MoveRSSItem(ctx context.Context, itemPath, destPath string) error {
	form := url.Values{}
	form.Set("itemPath", itemPath)
	form.Set("destPath", destPath)
	return c.command(ctx, opRSSMoveItem, nil, form)
}

// RSSItems returns the feed tree as the daemon reports it, keyed by item
// path. withData includes article data for each feed.
func (c *Client) RSSItems(ctx context.Context, withData bool) (map[string]json.RawMessage, error) {
	query := url.Values{}
	if withData {
		query.Set("withData", strconv.FormatBool(withData))
	}
	items := make(map[string]json.RawMessage)
	if err := c.getJSON(ctx, opRSSItems, query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetRSSRule creates or replaces an automatic download rule.
func (c *Client) SetRSSRule(ctx context.Context, name string, rule RSSRule) error {
	def, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("encoding rss rule: %w", err)
	}
	form := url.Values{}
	form.Set("ruleName", name)
	form.Set("ruleDef", string(def))
	return c.command(ctx, opRSSSetRule, nil, form)
}

// RenameRSSRule renames an automatic download rule.
func (c *Client) RenameRSSRule(ctx context.Context, name, newName string) error {
	form := url.Values{}
	form.Set("ruleName", name)
	form.Set("newRuleName", newName)
	return c.command(ctx, opRSSRenameRule, nil, form)
}

// RemoveRSSRule deletes an automatic download rule.
func (c *Client) RemoveRSSRule(ctx context.Context, name string) error {
	form := url.Values{}
	form.Set("ruleName", name)
	return c.command(ctx, opRSSRemoveRule, nil, form)
}

// RSSRules lists the automatic download rules, keyed by rule name.
func (c *Client) RSSRules(ctx context.Context) (map[string]RSSRule, error) {
	rules := make(map[string]RSSRule)
	if err := c.getJSON(ctx, opRSSRules, nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
