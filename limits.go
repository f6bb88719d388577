package qbittorrent

import (
	"context"
	"net/url"
	"strconv"
)

// TransferInfo returns the daemon's global transfer snapshot.
func (c *Client) TransferInfo(ctx context.Context) (*TransferInfo, error) {
	var info TransferInfo
	if err := c.getJSON(ctx, opTransferInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GlobalDownloadLimit returns the global download cap. Both generations
// answer with a bare number; non-positive values decode as no cap.
func (c *Client) GlobalDownloadLimit(ctx context.Context) (Limit, error) {
	var limit Limit
	if err := c.getJSON(ctx, opGlobalDownloadLimit, nil, &limit); err != nil {
		return Limit{}, err
	}
	return limit, nil
}

// SetGlobalDownloadLimit sets the global download cap in bytes/s.
// Zero clears the cap.
func (c *Client) SetGlobalDownloadLimit(ctx context.Context, bytesPerSec int64) error {
	return c.command(ctx, opSetGlobalDownloadLimit, nil, limitForm(bytesPerSec))
}

// GlobalUploadLimit returns the global upload cap.
func (c *Client) GlobalUploadLimit(ctx context.Context) (Limit, error) {
	var limit Limit
	if err := c.getJSON(ctx, opGlobalUploadLimit, nil, &limit); err != nil {
		return Limit{}, err
	}
	return limit, nil
}

// SetGlobalUploadLimit sets the global upload cap in bytes/s.
// Zero clears the cap.
func (c *Client) SetGlobalUploadLimit(ctx context.Context, bytesPerSec int64) error {
	return c.command(ctx, opSetGlobalUploadLimit, nil, limitForm(bytesPerSec))
}

// DownloadLimits returns the per-torrent download caps for the selection,
// keyed by hash. Daemon-side "no cap" sentinels decode as unset limits.
func (c *Client) DownloadLimits(ctx context.Context, hashes Hashes) (map[Hash]Limit, error) {
	return c.torrentLimits(ctx, opDownloadLimit, hashes)
}

// SetDownloadLimit caps download speed for the selection in bytes/s.
// Zero clears the cap.
func (c *Client) SetDownloadLimit(ctx context.Context, hashes Hashes, bytesPerSec int64) error {
	return c.command(ctx, opSetDownloadLimit, &hashes, limitForm(bytesPerSec))
}

// UploadLimits returns the per-torrent upload caps for the selection.
func (c *Client) UploadLimits(ctx context.Context, hashes Hashes) (map[Hash]Limit, error) {
	return c.torrentLimits(ctx, opUploadLimit, hashes)
}

// SetUploadLimit caps upload speed for the selection in bytes/s.
// Zero clears the cap.
func (c *Client) SetUploadLimit(ctx context.Context, hashes Hashes, bytesPerSec int64) error {
	return c.command(ctx, opSetUploadLimit, &hashes, limitForm(bytesPerSec))
}

func (c *Client) torrentLimits(ctx context.Context, op operation, hashes Hashes) (map[Hash]Limit, error) {
	cap, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}
	ep, err := resolve(op, cap)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	if err := applySelector(op, cap, ep, hashes, form); err != nil {
		return nil, err
	}

	data, err := c.request(ctx, op, ep, nil, form)
	if err != nil {
		return nil, err
	}
	limits := make(map[Hash]Limit)
	if err := decodeJSON(op, data, &limits); err != nil {
		return nil, err
	}
	return limits, nil
}

func limitForm(bytesPerSec int64) url.Values {
	form := url.Values{}
	form.Set("limit", strconv.FormatInt(bytesPerSec, 10))
	return form
}
