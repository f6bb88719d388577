package qbittorrent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// daemon is a fake qBittorrent Web UI for tests. It serves login and the
// version probe endpoints for one generation and hands everything else to
// the per-test handler.
type daemon struct {
	srv        *httptest.Server
	legacy     bool
	apiVersion string // webapiVersion for v2, integer api level for legacy
	appVersion string

	probes   atomic.Int32 // capability probe requests observed
	requests atomic.Int32 // non-login, non-probe requests observed
}

func newDaemon(t *testing.T, legacy bool, apiVersion string, handler http.HandlerFunc) *daemon {
	t.Helper()
	d := &daemon{legacy: legacy, apiVersion: apiVersion, appVersion: "v4.6.0"}
	if legacy {
		d.appVersion = "v4.0.4"
	}

	d.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/auth/login":
			if d.legacy {
				http.NotFound(w, r)
				return
			}
			d.serveLogin(w, r)
		case "/login":
			if !d.legacy {
				http.NotFound(w, r)
				return
			}
			d.serveLogin(w, r)
		case "/api/v2/app/webapiVersion":
			d.probes.Add(1)
			if d.legacy {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(d.apiVersion))
		case "/api/v2/app/version":
			w.Write([]byte(d.appVersion))
		case "/version/api":
			if !d.legacy {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(d.apiVersion))
		case "/version/qbittorrent":
			w.Write([]byte(d.appVersion))
		default:
			d.requests.Add(1)
			if handler != nil {
				handler(w, r)
				return
			}
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(d.srv.Close)
	return d
}

func (d *daemon) serveLogin(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	if r.PostFormValue("username") != "admin" || r.PostFormValue("password") != "secret" {
		w.Write([]byte("Fails."))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session"})
	w.Write([]byte("Ok."))
}

func v2Daemon(t *testing.T, apiVersion string, handler http.HandlerFunc) *daemon {
	return newDaemon(t, false, apiVersion, handler)
}

func v1Daemon(t *testing.T, apiLevel string, handler http.HandlerFunc) *daemon {
	return newDaemon(t, true, apiLevel, handler)
}

func newTestClient(t *testing.T, d *daemon) *Client {
	t.Helper()
	u, err := url.Parse(d.srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	client, err := New(Config{
		Host:     u.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "secret",
	}, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func loggedInClient(t *testing.T, d *daemon) *Client {
	t.Helper()
	client := newTestClient(t, d)
	require.NoError(t, client.Login(context.Background()))
	return client
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Port: 8080}, zerolog.Nop())
	require.Error(t, err)

	_, err = New(Config{Host: "localhost"}, zerolog.Nop())
	require.Error(t, err)

	_, err = New(Config{Host: "localhost", Port: 99999}, zerolog.Nop())
	require.Error(t, err)
}

func TestLogin_V2(t *testing.T) {
	d := v2Daemon(t, "2.8.3", nil)
	client := newTestClient(t, d)

	require.NoError(t, client.Login(context.Background()))
	// Idempotent.
	require.NoError(t, client.Login(context.Background()))
}

func TestLogin_LegacyFallback(t *testing.T) {
	d := v1Daemon(t, "17", nil)
	client := newTestClient(t, d)

	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, int32(0), d.probes.Load(), "login must not trigger detection")
}

func TestLogin_BadCredentials(t *testing.T) {
	d := v2Daemon(t, "2.8.3", nil)
	client := newTestClient(t, d)
	client.config.Password = "wrong"

	err := client.Login(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestOperation_BeforeLogin(t *testing.T) {
	d := v2Daemon(t, "2.8.3", nil)
	client := newTestClient(t, d)

	_, err := client.Torrents(context.Background(), TorrentListOptions{})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), d.probes.Load())
	assert.Equal(t, int32(0), d.requests.Load())
}

func TestLogout(t *testing.T) {
	d := v2Daemon(t, "2.8.3", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/auth/logout" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	})
	client := loggedInClient(t, d)

	require.NoError(t, client.Logout(context.Background()))

	_, err := client.Torrents(context.Background(), TorrentListOptions{})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestVersion(t *testing.T) {
	d := v2Daemon(t, "2.8.3", nil)
	client := loggedInClient(t, d)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v4.6.0", version)

	cap, err := client.APIVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GenV2, cap.Generation)
	assert.Equal(t, "2.8.3", cap.APIVersion.String())
}

func TestRequestFailed_CarriesStatus(t *testing.T) {
	d := v2Daemon(t, "2.8.3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	})
	client := loggedInClient(t, d)

	_, err := client.Torrents(context.Background(), TorrentListOptions{})
	require.ErrorIs(t, err, ErrRequestFailed)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.Code)
}

func TestDecodeError(t *testing.T) {
	d := v2Daemon(t, "2.8.3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	client := loggedInClient(t, d)

	_, err := client.Torrents(context.Background(), TorrentListOptions{})
	require.ErrorIs(t, err, ErrDecode)
}

func TestTransportError(t *testing.T) {
	d := v2Daemon(t, "2.8.3", nil)
	client := loggedInClient(t, d)

	// Detect first so the failure below is a plain transport error, not a
	// detection failure.
	_, err := client.APIVersion(context.Background())
	require.NoError(t, err)

	d.srv.Close()

	_, err = client.Torrents(context.Background(), TorrentListOptions{})
	require.ErrorIs(t, err, ErrTransport)
	require.NotErrorIs(t, err, ErrDetectionFailed)
}
