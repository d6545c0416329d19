package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `[{"id":"1","title":"React Hooks"}]`

func readAll(t *testing.T, src Source) string {
	t.Helper()
	rc, err := src.Fetch(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestNew(t *testing.T) {
	src, err := New("https://example.com/search-index.json", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, src)

	src, err = New("./public/search-index.json", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &File{}, src)
	assert.Equal(t, "./public/search-index.json", src.String())

	src, err = New("file:///srv/index.json", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "/srv/index.json", src.String())

	_, err = New("ftp://example.com/index.json", time.Second)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = New("  ", time.Second)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFile_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search-index.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleIndex), 0644))

	assert.Equal(t, sampleIndex, readAll(t, NewFile(path)))
}

func TestFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sampleIndex))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "search-index.json.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	assert.Equal(t, sampleIndex, readAll(t, NewFile(path)))
}

func TestFile_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte(sampleIndex), nil)
	require.NoError(t, enc.Close())

	path := filepath.Join(t.TempDir(), "search-index.json.zst")
	require.NoError(t, os.WriteFile(path, compressed, 0644))

	assert.Equal(t, sampleIndex, readAll(t, NewFile(path)))
}

func TestFile_Missing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFile("whatever.json").Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic(t *testing.T) {
	assert.Equal(t, sampleIndex, readAll(t, Static(sampleIndex)))
}

func fastHTTP(url string) *HTTP {
	h := NewHTTP(url, time.Second)
	h.client.RetryWaitMin = time.Millisecond
	h.client.RetryWaitMax = 5 * time.Millisecond
	return h
}

func TestHTTP_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(sampleIndex))
	}))
	defer srv.Close()

	assert.Equal(t, sampleIndex, readAll(t, fastHTTP(srv.URL)))
}

func TestHTTP_RetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleIndex))
	}))
	defer srv.Close()

	assert.Equal(t, sampleIndex, readAll(t, fastHTTP(srv.URL)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTP_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := fastHTTP(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search-index.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleIndex), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not called")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
