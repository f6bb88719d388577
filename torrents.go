package qbittorrent

import (
	"context"
	"net/url"
	"strconv"
)

// Torrents lists torrents matching the given options.
func (c *Client) Torrents(ctx context.Context, opts TorrentListOptions) ([]TorrentInfo, error) {
	query := url.Values{}
	if opts.Filter != "" {
		query.Set("filter", string(opts.Filter))
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if len(opts.Hashes) > 0 {
		query.Set("hashes", HashesOf(opts.Hashes...).join("|"))
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Reverse {
		query.Set("reverse", "true")
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset != 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var torrents []TorrentInfo
	if err := c.getJSON(ctx, opTorrentList, query, &torrents); err != nil {
		return nil, err
	}
	for i := range torrents {
		// Old daemons report the category as "label".
		if torrents[i].Category == "" && torrents[i].Label != "" {
			torrents[i].Category = torrents[i].Label
		}
	}
	if len(opts.Hashes) > 0 {
		torrents = filterByHash(torrents, opts.Hashes)
	}
	return torrents, nil
}

// filterByHash keeps only the requested torrents. Legacy daemons do not
// understand the hashes query parameter and return everything; filtering
// locally keeps the two generations' results identical.
func filterByHash(torrents []TorrentInfo, hashes []Hash) []TorrentInfo {
	want := make(map[Hash]struct{}, len(hashes))
	for _, h := range hashes {
		want[h] = struct{}{}
	}
	kept := torrents[:0]
	for _, torrent := range torrents {
		if _, ok := want[torrent.Hash]; ok {
			kept = append(kept, torrent)
		}
	}
	return kept
}

// TorrentProperties returns the detailed view of one torrent. The legacy API
// carries the hash as a path segment, the v2 API as a query parameter.
func (c *Client) TorrentProperties(ctx context.Context, hash Hash) (*TorrentProperties, error) {
	if _, err := ParseHash(string(hash)); err != nil {
		return nil, err
	}
	cap, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}
	ep, err := resolve(opTorrentProperties, cap)
	if err != nil {
		return nil, err
	}

	wire := *ep
	query := url.Values{}
	if wire.appendHash {
		wire.path += "/" + string(hash)
	} else {
		query.Set(wire.hashField, string(hash))
	}

	data, err := c.request(ctx, opTorrentProperties, &wire, query, nil)
	if err != nil {
		return nil, err
	}
	var props TorrentProperties
	if err := decodeJSON(opTorrentProperties, data, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// Pause stops the selected torrents. The all sentinel maps to the legacy
// dedicated pause-all endpoint under v1 and to the v2 all selector value.
func (c *Client) Pause(ctx context.Context, hashes Hashes) error {
	op := opPause
	if hashes.All() {
		op = opPauseAll
	}
	return c.command(ctx, op, &hashes, nil)
}

// PauseAll stops every torrent.
func (c *Client) PauseAll(ctx context.Context) error {
	return c.Pause(ctx, AllTorrents)
}

// Resume starts the selected torrents.
func (c *Client) Resume(ctx context.Context, hashes Hashes) error {
	op := opResume
	if hashes.All() {
		op = opResumeAll
	}
	return c.command(ctx, op, &hashes, nil)
}

// ResumeAll starts every torrent.
func (c *Client) ResumeAll(ctx context.Context) error {
	return c.Resume(ctx, AllTorrents)
}

// Recheck forces a hash recheck of the selected torrents.
func (c *Client) Recheck(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opRecheck, &hashes, nil)
}

// Reannounce asks the trackers for the selected torrents again.
// Requires api v2 >= 2.0.2.
func (c *Client) Reannounce(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opReannounce, &hashes, nil)
}

// Delete removes the selected torrents, optionally with their data. The
// legacy API splits the two cases across endpoints; v2 shares one endpoint
// and carries the flag in the form.
func (c *Client) Delete(ctx context.Context, hashes Hashes, deleteFiles bool) error {
	cap, err := c.ready(ctx)
	if err != nil {
		return err
	}
	op := opDelete
	if deleteFiles {
		op = opDeleteWithFiles
	}
	var extra url.Values
	if cap.Generation == GenV2 {
		extra = url.Values{}
		extra.Set("deleteFiles", strconv.FormatBool(deleteFiles))
	}
	return c.command(ctx, op, &hashes, extra)
}

// IncreasePriority moves the selected torrents up the queue.
func (c *Client) IncreasePriority(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opIncreasePriority, &hashes, nil)
}

// DecreasePriority moves the selected torrents down the queue.
func (c *Client) DecreasePriority(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opDecreasePriority, &hashes, nil)
}

// TopPriority moves the selected torrents to the top of the queue.
func (c *Client) TopPriority(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opTopPriority, &hashes, nil)
}

// BottomPriority moves the selected torrents to the bottom of the queue.
func (c *Client) BottomPriority(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opBottomPriority, &hashes, nil)
}

// SetAutomaticManagement toggles automatic torrent management.
func (c *Client) SetAutomaticManagement(ctx context.Context, hashes Hashes, enable bool) error {
	extra := url.Values{}
	extra.Set("enable", strconv.FormatBool(enable))
	return c.command(ctx, opSetAutoManagement, &hashes, extra)
}

// SetForceStart toggles force start.
func (c *Client) SetForceStart(ctx context.Context, hashes Hashes, value bool) error {
	extra := url.Values{}
	extra.Set("value", strconv.FormatBool(value))
	return c.command(ctx, opSetForceStart, &hashes, extra)
}

// SetSuperSeeding toggles super seeding.
func (c *Client) SetSuperSeeding(ctx context.Context, hashes Hashes, value bool) error {
	extra := url.Values{}
	extra.Set("value", strconv.FormatBool(value))
	return c.command(ctx, opSetSuperSeeding, &hashes, extra)
}

// ToggleSequentialDownload flips sequential download for the selection.
func (c *Client) ToggleSequentialDownload(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opToggleSequentialDownload, &hashes, nil)
}

// ToggleFirstLastPiecePriority flips first/last piece priority for the
// selection.
func (c *Client) ToggleFirstLastPiecePriority(ctx context.Context, hashes Hashes) error {
	return c.command(ctx, opToggleFirstLastPiecePrio, &hashes, nil)
}

// SetLocation moves the selected torrents' data to a new path.
func (c *Client) SetLocation(ctx context.Context, hashes Hashes, location string) error {
	extra := url.Values{}
	extra.Set("location", location)
	return c.command(ctx, opSetLocation, &hashes, extra)
}

// Rename changes a torrent's display name.
func (c *Client) Rename(ctx context.Context, hash Hash, name string) error {
	hashes, err := NewHashes(string(hash))
	if err != nil {
		return err
	}
	extra := url.Values{}
	extra.Set("name", name)
	return c.command(ctx, opRenameTorrent, &hashes, extra)
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.command(ctx, opShutdown, nil, nil)
}
