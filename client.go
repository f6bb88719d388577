// Package qbittorrent implements a qBittorrent Web API client.
//
// The daemon exposes two incompatible API generations: the legacy surface of
// qBittorrent < 4.1 and the /api/v2 surface of 4.1+. The client detects which
// one the remote daemon speaks on first use, caches the result for its
// lifetime, and routes every logical operation to the matching wire shape.
// Operations the detected daemon cannot serve fail with UnsupportedError
// before any request is sent.
package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var validate = validator.New()

// Client is a session against one qBittorrent daemon. It is safe for
// concurrent use; the detected capability is the only shared mutable state
// and is written once.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	capCache    atomic.Pointer[Capability]
	detectGroup singleflight.Group
	authed      atomic.Bool
}

// New creates a client for the given Web UI. No request is made until Login.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		config:  cfg,
		baseURL: cfg.baseURL(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logger: logger.With().Str("component", "qbittorrent").Logger(),
	}, nil
}

// Login authenticates against the daemon and stores the session cookie.
// Authentication precedes capability detection, so this is the one request
// that cannot be routed by the detected generation: it tries the v2 login
// path first and falls back to the legacy path when the daemon does not
// serve it. Login is idempotent; a failed login leaves any previous session
// intact.
func (c *Client) Login(ctx context.Context) error {
	spec := endpoints[opLogin]
	form := url.Values{}
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)

	status, body, err := c.send(ctx, spec.v2.method, spec.v2.path, nil, strings.NewReader(form.Encode()), contentTypeForm)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		status, body, err = c.send(ctx, spec.v1.method, spec.v1.path, nil, strings.NewReader(form.Encode()), contentTypeForm)
		if err != nil {
			return err
		}
	}

	switch {
	case status == http.StatusOK:
		// Both generations answer 200 with a textual verdict.
		if strings.HasPrefix(string(body), "Fails") {
			return ErrAuthFailed
		}
		c.authed.Store(true)
		c.logger.Debug().Str("user", c.config.Username).Msg("logged in")
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: daemon returned status %d", ErrAuthFailed, status)
	default:
		return &StatusError{Op: opName(opLogin), Code: status, Body: strings.TrimSpace(string(body))}
	}
}

// Logout ends the session. Subsequent operations fail with
// ErrNotAuthenticated until Login is called again.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.command(ctx, opLogout, nil, nil); err != nil {
		return err
	}
	c.authed.Store(false)
	return nil
}

// Version returns the daemon's application version, e.g. "v4.6.3",
// detecting the capability if it is not yet known.
func (c *Client) Version(ctx context.Context) (string, error) {
	cap, err := c.ready(ctx)
	if err != nil {
		return "", err
	}
	return cap.AppVersion, nil
}

// APIVersion returns the detected Web API capability.
func (c *Client) APIVersion(ctx context.Context) (Capability, error) {
	return c.ready(ctx)
}

// ready guards every authenticated operation: session first (no I/O when
// there is none), then the memoized capability.
func (c *Client) ready(ctx context.Context) (Capability, error) {
	if !c.authed.Load() {
		return Capability{}, ErrNotAuthenticated
	}
	return c.capability(ctx)
}

// request resolves and executes one wire request, classifying the status.
func (c *Client) request(ctx context.Context, op operation, ep *endpoint, query, form url.Values) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if ep.method == http.MethodPost && len(form) > 0 {
		body = strings.NewReader(form.Encode())
		contentType = contentTypeForm
	}

	status, data, err := c.send(ctx, ep.method, ep.path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{Op: opName(op), Code: status, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// command dispatches a side-effecting operation. The selector, when present,
// is translated to the detected generation's wire form: pipe-joined hash
// lists, the v2 "all" selector value, the legacy dedicated all endpoints
// (routed by the caller), or the legacy single-hash fan-out.
func (c *Client) command(ctx context.Context, op operation, hashes *Hashes, extra url.Values) error {
	cap, err := c.ready(ctx)
	if err != nil {
		return err
	}
	ep, err := resolve(op, cap)
	if err != nil {
		return err
	}

	form := url.Values{}
	for k, vs := range extra {
		form[k] = vs
	}

	if hashes != nil {
		if ep.perHash && !hashes.All() && !hashes.Empty() {
			// Legacy single-hash commands fan out one request per hash.
			for _, h := range hashes.Slice() {
				one := url.Values{}
				for k, vs := range form {
					one[k] = vs
				}
				one.Set(ep.hashField, string(h))
				if _, err := c.request(ctx, op, ep, nil, one); err != nil {
					return err
				}
			}
			return nil
		}
		if err := applySelector(op, cap, ep, *hashes, form); err != nil {
			return err
		}
	}

	_, err = c.request(ctx, op, ep, nil, form)
	return err
}

// applySelector writes the selector into the endpoint's hash field using the
// detected generation's wire form. The all sentinel becomes the v2 "all"
// selector value; legacy endpoints that require explicit hashes have no wire
// form for it and refuse. Dedicated legacy all endpoints carry no selector
// at all, so a missing hash field is not an error.
func applySelector(op operation, cap Capability, ep *endpoint, hashes Hashes, form url.Values) error {
	switch {
	case hashes.All():
		if ep.hashField == "" {
			return nil
		}
		if cap.Generation == GenV1 {
			return &UnsupportedError{
				Op:       opName(op) + " (all torrents)",
				Required: GenV2.String(),
				Actual:   cap,
			}
		}
		form.Set(ep.hashField, allSelectorV2)
	case hashes.Empty():
		return ErrEmptySet
	default:
		form.Set(ep.hashField, hashes.join("|"))
	}
	return nil
}

// getJSON dispatches a read and decodes its JSON body.
func (c *Client) getJSON(ctx context.Context, op operation, query url.Values, out any) error {
	cap, err := c.ready(ctx)
	if err != nil {
		return err
	}
	ep, err := resolve(op, cap)
	if err != nil {
		return err
	}

	var q, form url.Values
	if ep.method == http.MethodGet {
		q = query
	} else {
		form = query
	}
	data, err := c.request(ctx, op, ep, q, form)
	if err != nil {
		return err
	}
	return decodeJSON(op, data, out)
}

// decodeJSON decodes a success body into the operation's result shape.
func decodeJSON(op operation, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Op: opName(op), Err: err}
	}
	return nil
}
