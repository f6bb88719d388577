package qbittorrent

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	d := v2Daemon(t, "2.1.1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/torrents/categories", r.URL.Path)
		w.Write([]byte(`{"linux":{"name":"linux","savePath":"/downloads/linux"},"books":{"name":"books","savePath":""}}`))
	})
	client := loggedInClient(t, d)

	categories, err := client.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "/downloads/linux", categories["linux"].SavePath)
}

func TestCategories_RequiresNewerAPI(t *testing.T) {
	d := v2Daemon(t, "2.1.0", nil)
	client := loggedInClient(t, d)

	_, err := client.Categories(context.Background())
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, int32(0), d.requests.Load())
}

func TestAddCategory(t *testing.T) {
	t.Run("v2 with save path", func(t *testing.T) {
		rec := &recorder{}
		d := v2Daemon(t, "2.8.3", rec.handler(""))
		client := loggedInClient(t, d)

		require.NoError(t, client.AddCategory(context.Background(), "linux", "/downloads/linux"))

		req := rec.single(t)
		assert.Equal(t, "/api/v2/torrents/createCategory", req.path)
		assert.Equal(t, "linux", req.form.Get("category"))
		assert.Equal(t, "/downloads/linux", req.form.Get("savePath"))
	})

	t.Run("legacy drops save path", func(t *testing.T) {
		rec := &recorder{}
		d := v1Daemon(t, "17", rec.handler(""))
		client := loggedInClient(t, d)

		require.NoError(t, client.AddCategory(context.Background(), "linux", "/downloads/linux"))

		req := rec.single(t)
		assert.Equal(t, "/command/addCategory", req.path)
		assert.Equal(t, "linux", req.form.Get("category"))
		assert.Empty(t, req.form.Get("savePath"))
	})
}

func TestEditCategory_VersionGate(t *testing.T) {
	d := v2Daemon(t, "2.0.2", nil)
	client := loggedInClient(t, d)

	err := client.EditCategory(context.Background(), "linux", "/new")
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, int32(0), d.requests.Load())
}

func TestRemoveCategories(t *testing.T) {
	rec := &recorder{}
	d := v2Daemon(t, "2.8.3", rec.handler(""))
	client := loggedInClient(t, d)

	require.NoError(t, client.RemoveCategories(context.Background(), "linux", "books"))

	req := rec.single(t)
	assert.Equal(t, "/api/v2/torrents/removeCategories", req.path)
	assert.Equal(t, "linux\nbooks", req.form.Get("categories"))

	require.ErrorIs(t, client.RemoveCategories(context.Background()), ErrEmptySet)
}

func TestSetCategory(t *testing.T) {
	rec := &recorder{}
	d := v2Daemon(t, "2.8.3", rec.handler(""))
	client := loggedInClient(t, d)

	hashes, err := NewHashes("aaa", "bbb")
	require.NoError(t, err)
	require.NoError(t, client.SetCategory(context.Background(), hashes, "linux"))

	req := rec.single(t)
	assert.Equal(t, "/api/v2/torrents/setCategory", req.path)
	assert.Equal(t, "aaa|bbb", req.form.Get("hashes"))
	assert.Equal(t, "linux", req.form.Get("category"))
}
