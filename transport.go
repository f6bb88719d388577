package qbittorrent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	contentTypeForm = "application/x-www-form-urlencoded"
)

// Config holds the connection settings for a qBittorrent Web UI.
type Config struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,gte=1,lte=65535"`
	Username string
	Password string
	UseSSL   bool
	// URLBase is the path prefix when the Web UI is served behind a reverse
	// proxy, e.g. "/qbittorrent".
	URLBase string
	// Timeout bounds every request including the capability probe.
	// Zero means 30 seconds.
	Timeout time.Duration
}

func (cfg Config) baseURL() string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	urlBase := ""
	if cfg.URLBase != "" {
		urlBase = "/" + strings.Trim(cfg.URLBase, "/")
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, cfg.Host, cfg.Port, urlBase)
}

// send executes one raw request against the daemon. The session cookie rides
// in the client's cookie jar; the Referer header satisfies the Web UI's CSRF
// check on both generations. Connection-level failures come back wrapped as
// TransportError, caller cancellation as the context's own error. The daemon's
// status code is returned as-is; classifying non-success statuses is the
// dispatch layer's job.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (int, []byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Referer", c.baseURL)
	req.Header.Set("Origin", c.baseURL)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, &TransportError{Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("request")

	return resp.StatusCode, data, nil
}
