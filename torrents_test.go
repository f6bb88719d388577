package qbittorrent

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures requests the fake daemon sees, beyond login and probes.
type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	form   url.Values
}

func (rec *recorder) handler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			form:   r.PostForm,
		})
		rec.mu.Unlock()
		w.Write([]byte(body))
	}
}

func (rec *recorder) all() []recordedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]recordedRequest(nil), rec.reqs...)
}

func (rec *recorder) single(t *testing.T) recordedRequest {
	t.Helper()
	reqs := rec.all()
	require.Len(t, reqs, 1)
	return reqs[0]
}

func TestTorrents_V2(t *testing.T) {
	d := v2Daemon(t, "2.8.3", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/torrents/info", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "downloading", q.Get("filter"))
		assert.Equal(t, "linux", q.Get("category"))
		assert.Equal(t, "name", q.Get("sort"))
		assert.Equal(t, "10", q.Get("limit"))
		w.Write([]byte(`[
			{"hash":"aaa","name":"debian","size":1000,"progress":0.5,"state":"downloading","category":"linux","dl_limit":-1,"up_limit":2048},
			{"hash":"bbb","name":"ubuntu","size":2000,"progress":1,"state":"uploading","category":"linux","dl_limit":1024,"up_limit":-1}
		]`))
	})
	client := loggedInClient(t, d)

	torrents, err := client.Torrents(context.Background(), TorrentListOptions{
		Filter:   FilterDownloading,
		Category: "linux",
		Sort:     "name",
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, torrents, 2)

	assert.Equal(t, Hash("aaa"), torrents[0].Hash)
	assert.Equal(t, StateDownloading, torrents[0].State)
	assert.False(t, torrents[0].DownloadLimit.Valid, "-1 must decode as unset")
	assert.True(t, torrents[0].UploadLimit.Valid)
	assert.Equal(t, int64(2048), torrents[0].UploadLimit.Bytes)
	assert.False(t, torrents[1].UploadLimit.Valid)
}

func TestTorrents_LegacyLabelFold(t *testing.T) {
	d := v1Daemon(t, "17", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/torrents", r.URL.Path)
		w.Write([]byte(`[{"hash":"aaa","name":"debian","label":"isos","state":"pausedDL"}]`))
	})
	client := loggedInClient(t, d)

	torrents, err := client.Torrents(context.Background(), TorrentListOptions{})
	require.NoError(t, err)
	require.Len(t, torrents, 1)
	assert.Equal(t, "isos", torrents[0].Category, "legacy label must fold into Category")
}

func TestTorrents_HashesFilter(t *testing.T) {
	t.Run("v2 daemon-side", func(t *testing.T) {
		d := v2Daemon(t, "2.8.3", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "aaa|bbb", r.URL.Query().Get("hashes"))
			w.Write([]byte(`[{"hash":"aaa"},{"hash":"bbb"}]`))
		})
		client := loggedInClient(t, d)

		torrents, err := client.Torrents(context.Background(), TorrentListOptions{
			Hashes: []Hash{"aaa", "bbb"},
		})
		require.NoError(t, err)
		assert.Len(t, torrents, 2)
	})

	t.Run("v1 filtered locally", func(t *testing.T) {
		// Legacy daemons ignore the hashes parameter and return everything.
		d := v1Daemon(t, "17", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"hash":"aaa"},{"hash":"bbb"},{"hash":"ccc"}]`))
		})
		client := loggedInClient(t, d)

		torrents, err := client.Torrents(context.Background(), TorrentListOptions{
			Hashes: []Hash{"ccc"},
		})
		require.NoError(t, err)
		require.Len(t, torrents, 1)
		assert.Equal(t, Hash("ccc"), torrents[0].Hash)
	})
}

func TestPause_ExplicitHashes_V2(t *testing.T) {
	rec := &recorder{}
	d := v2Daemon(t, "2.8.3", rec.handler(""))
	client := loggedInClient(t, d)

	hashes, err := NewHashes("aaa", "bbb")
	require.NoError(t, err)
	require.NoError(t, client.Pause(context.Background(), hashes))

	req := rec.single(t)
	assert.Equal(t, "/api/v2/torrents/pause", req.path)
	assert.Equal(t, "aaa|bbb", req.form.Get("hashes"))
}

func TestPause_ExplicitHashes_LegacyFanOut(t *testing.T) {
	rec := &recorder{}
	d := v1Daemon(t, "17", rec.handler(""))
	client := loggedInClient(t, d)

	hashes, err := NewHashes("aaa", "bbb")
	require.NoError(t, err)
	require.NoError(t, client.Pause(context.Background(), hashes))

	reqs := rec.all()
	require.Len(t, reqs, 2, "legacy pause takes one hash per request")
	assert.Equal(t, "/command/pause", reqs[0].path)
	assert.Equal(t, "aaa", reqs[0].form.Get("hash"))
	assert.Equal(t, "bbb", reqs[1].form.Get("hash"))
}

func TestPauseAll_PerGenerationWireForm(t *testing.T) {
	t.Run("v1 dedicated endpoint, no selector", func(t *testing.T) {
		rec := &recorder{}
		d := v1Daemon(t, "17", rec.handler(""))
		client := loggedInClient(t, d)

		require.NoError(t, client.PauseAll(context.Background()))

		req := rec.single(t)
		assert.Equal(t, "/command/pauseAll", req.path)
		assert.Empty(t, req.form.Get("hashes"))
		assert.Empty(t, req.form.Get("hash"))
	})

	t.Run("v2 shared endpoint, all selector", func(t *testing.T) {
		rec := &recorder{}
		d := v2Daemon(t, "2.8.3", rec.handler(""))
		client := loggedInClient(t, d)

		require.NoError(t, client.PauseAll(context.Background()))

		req := rec.single(t)
		assert.Equal(t, "/api/v2/torrents/pause", req.path)
		assert.Equal(t, "all", req.form.Get("hashes"))
	})
}

func TestRecheckAll_LegacyUnsupported(t *testing.T) {
	rec := &recorder{}
	d := v1Daemon(t, "17", rec.handler(""))
	client := loggedInClient(t, d)

	err := client.Recheck(context.Background(), AllTorrents)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, rec.all(), "refusal must happen before any request")
}

func TestReannounce_V2Only(t *testing.T) {
	rec := &recorder{}
	d := v1Daemon(t, "17", rec.handler(""))
	client := loggedInClient(t, d)

	hashes, err := NewHashes("aaa")
	require.NoError(t, err)
	err = client.Reannounce(context.Background(), hashes)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, rec.all())
	assert.Equal(t, int32(1), d.probes.Load(), "only the detection probe may hit the daemon")
}

func TestDelete_PerGeneration(t *testing.T) {
	t.Run("v2 carries the flag", func(t *testing.T) {
		rec := &recorder{}
		d := v2Daemon(t, "2.8.3", rec.handler(""))
		client := loggedInClient(t, d)

		hashes, err := NewHashes("aaa")
		require.NoError(t, err)
		require.NoError(t, client.Delete(context.Background(), hashes, true))

		req := rec.single(t)
		assert.Equal(t, "/api/v2/torrents/delete", req.path)
		assert.Equal(t, "true", req.form.Get("deleteFiles"))
	})

	t.Run("v1 splits endpoints", func(t *testing.T) {
		rec := &recorder{}
		d := v1Daemon(t, "17", rec.handler(""))
		client := loggedInClient(t, d)

		hashes, err := NewHashes("aaa", "bbb")
		require.NoError(t, err)
		require.NoError(t, client.Delete(context.Background(), hashes, true))

		req := rec.single(t)
		assert.Equal(t, "/command/deletePerm", req.path)
		assert.Equal(t, "aaa|bbb", req.form.Get("hashes"))
		assert.Empty(t, req.form.Get("deleteFiles"))
	})
}

func TestTorrentProperties_PerGeneration(t *testing.T) {
	const props = `{"save_path":"/downloads","share_ratio":1.5,"dl_limit":-1,"up_limit":4096}`

	t.Run("v1 path segment", func(t *testing.T) {
		rec := &recorder{}
		d := v1Daemon(t, "17", rec.handler(props))
		client := loggedInClient(t, d)

		got, err := client.TorrentProperties(context.Background(), "aaa")
		require.NoError(t, err)

		req := rec.single(t)
		assert.Equal(t, "/query/propertiesGeneral/aaa", req.path)
		assert.Equal(t, "/downloads", got.SavePath)
		assert.False(t, got.DownloadLimit.Valid)
		assert.Equal(t, int64(4096), got.UploadLimit.Bytes)
	})

	t.Run("v2 query parameter", func(t *testing.T) {
		rec := &recorder{}
		d := v2Daemon(t, "2.8.3", rec.handler(props))
		client := loggedInClient(t, d)

		_, err := client.TorrentProperties(context.Background(), "aaa")
		require.NoError(t, err)

		req := rec.single(t)
		assert.Equal(t, "/api/v2/torrents/properties", req.path)
		assert.Equal(t, "aaa", req.query.Get("hash"))
	})
}

func TestTorrentProperties_InvalidHash(t *testing.T) {
	d := v2Daemon(t, "2.8.3", nil)
	client := loggedInClient(t, d)

	_, err := client.TorrentProperties(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidHash)
	assert.Equal(t, int32(0), d.requests.Load())
}

func TestSetForceStart(t *testing.T) {
	rec := &recorder{}
	d := v2Daemon(t, "2.8.3", rec.handler(""))
	client := loggedInClient(t, d)

	hashes, err := NewHashes("aaa")
	require.NoError(t, err)
	require.NoError(t, client.SetForceStart(context.Background(), hashes, true))

	req := rec.single(t)
	assert.Equal(t, "/api/v2/torrents/setForceStart", req.path)
	assert.Equal(t, "true", req.form.Get("value"))
	assert.Equal(t, "aaa", req.form.Get("hashes"))
}

func TestRename(t *testing.T) {
	rec := &recorder{}
	d := v2Daemon(t, "2.8.3", rec.handler(""))
	client := loggedInClient(t, d)

	require.NoError(t, client.Rename(context.Background(), "aaa", "new name"))

	req := rec.single(t)
	assert.Equal(t, "/api/v2/torrents/rename", req.path)
	assert.Equal(t, "aaa", req.form.Get("hash"))
	assert.Equal(t, "new name", req.form.Get("name"))
}
