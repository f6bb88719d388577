package qbittorrent

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
)

// AddOptions controls how a torrent is added. The zero value accepts the
// daemon's defaults. Options past the first four are v2-only and are not
// sent to legacy daemons.
type AddOptions struct {
	SavePath string
	Category string
	Paused   bool
	// Cookie is sent to the daemon for fetching torrents behind
	// authenticated URLs.
	Cookie string

	SkipChecking           bool
	Sequential             bool
	FirstLastPiecePriority bool
	// RootFolder controls creation of a root folder for multi-file
	// torrents. Nil leaves the daemon default.
	RootFolder *bool
	// Rename sets the torrent name on add.
	Rename string
	// UploadLimit and DownloadLimit are in bytes/s; zero leaves them unset.
	UploadLimit   int64
	DownloadLimit int64
	// AutoManagement enables automatic torrent management. Nil leaves the
	// daemon default.
	AutoManagement *bool
}

// TorrentFile is one .torrent payload for AddTorrentFiles.
type TorrentFile struct {
	Name string
	Data []byte
}

// AddTorrentURLs adds torrents from HTTP/HTTPS URLs or magnet links.
func (c *Client) AddTorrentURLs(ctx context.Context, urls []string, opts AddOptions) error {
	if len(urls) == 0 {
		return fmt.Errorf("%w: no urls given", ErrEmptySet)
	}
	return c.addTorrents(ctx, opAddURLs, opts, func(mw *multipart.Writer) error {
		return mw.WriteField("urls", strings.Join(urls, "\n"))
	})
}

// AddTorrentFiles adds torrents from raw .torrent file contents.
func (c *Client) AddTorrentFiles(ctx context.Context, files []TorrentFile, opts AddOptions) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files given", ErrEmptySet)
	}
	return c.addTorrents(ctx, opAddFiles, opts, func(mw *multipart.Writer) error {
		for _, f := range files {
			name := f.Name
			if name == "" {
				name = "torrent"
			}
			fw, err := mw.CreateFormFile("torrents", name)
			if err != nil {
				return err
			}
			if _, err := fw.Write(f.Data); err != nil {
				return err
			}
		}
		return nil
	})
}

// addTorrents sends a multipart add request. Both generations accept
// multipart form-data here; only the path and the recognized option fields
// differ.
func (c *Client) addTorrents(ctx context.Context, op operation, opts AddOptions, payload func(*multipart.Writer) error) error {
	cap, err := c.ready(ctx)
	if err != nil {
		return err
	}
	ep, err := resolve(op, cap)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := payload(mw); err != nil {
		return fmt.Errorf("building add request: %w", err)
	}
	if err := writeAddOptions(mw, cap.Generation, opts); err != nil {
		return fmt.Errorf("building add request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("building add request: %w", err)
	}

	status, data, err := c.send(ctx, ep.method, ep.path, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &StatusError{Op: opName(op), Code: status, Body: strings.TrimSpace(string(data))}
	}
	// The v2 add endpoint reports a rejected torrent as 200 "Fails.".
	if strings.HasPrefix(string(data), "Fails") {
		return &StatusError{Op: opName(op), Code: status, Body: strings.TrimSpace(string(data))}
	}
	return nil
}

func writeAddOptions(mw *multipart.Writer, gen Generation, opts AddOptions) error {
	if opts.SavePath != "" {
		if err := mw.WriteField("savepath", opts.SavePath); err != nil {
			return err
		}
	}
	if opts.Category != "" {
		if err := mw.WriteField("category", opts.Category); err != nil {
			return err
		}
	}
	if opts.Paused {
		if err := mw.WriteField("paused", "true"); err != nil {
			return err
		}
	}
	if opts.Cookie != "" {
		if err := mw.WriteField("cookie", opts.Cookie); err != nil {
			return err
		}
	}
	if gen != GenV2 {
		// Legacy daemons do not understand the remaining options.
		return nil
	}

	if opts.SkipChecking {
		if err := mw.WriteField("skip_checking", "true"); err != nil {
			return err
		}
	}
	if opts.Sequential {
		if err := mw.WriteField("sequentialDownload", "true"); err != nil {
			return err
		}
	}
	if opts.FirstLastPiecePriority {
		if err := mw.WriteField("firstLastPiecePrio", "true"); err != nil {
			return err
		}
	}
	if opts.RootFolder != nil {
		if err := mw.WriteField("root_folder", strconv.FormatBool(*opts.RootFolder)); err != nil {
			return err
		}
	}
	if opts.Rename != "" {
		if err := mw.WriteField("rename", opts.Rename); err != nil {
			return err
		}
	}
	if opts.UploadLimit > 0 {
		if err := mw.WriteField("upLimit", strconv.FormatInt(opts.UploadLimit, 10)); err != nil {
			return err
		}
	}
	if opts.DownloadLimit > 0 {
		if err := mw.WriteField("dlLimit", strconv.FormatInt(opts.DownloadLimit, 10)); err != nil {
			return err
		}
	}
	if opts.AutoManagement != nil {
		if err := mw.WriteField("autoTMM", strconv.FormatBool(*opts.AutoManagement)); err != nil {
			return err
		}
	}
	return nil
}
