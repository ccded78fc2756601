package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recorder) importFile(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func waitResult(t *testing.T, w *Watcher) Result {
	t.Helper()
	select {
	case res := <-w.Results():
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for import")
		return Result{}
	}
}

func TestNewRequiresImportFunc(t *testing.T) {
	_, err := New(t.TempDir(), 0, nil)
	assert.Error(t, err)
}

func TestWatcherImportsNewImage(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w, err := New(dir, 50*time.Millisecond, rec.importFile)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0644))

	res := waitResult(t, w)
	assert.Equal(t, path, res.Path)
	assert.NoError(t, res.Err)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w, err := New(dir, 200*time.Millisecond, rec.importFile)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	path := filepath.Join(dir, "hero.jpg")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0644))
		time.Sleep(20 * time.Millisecond)
	}

	waitResult(t, w)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestWatcherIgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w, err := New(dir, 20*time.Millisecond, rec.importFile)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("x"), 0644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestWatcherQueuesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.webp")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	rec := &recorder{}
	w, err := New(dir, 20*time.Millisecond, rec.importFile)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	res := waitResult(t, w)
	assert.Equal(t, path, res.Path)
}

func TestWatcherReportsImportErrors(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{err: errors.New("not an image")}

	w, err := New(dir, 20*time.Millisecond, rec.importFile)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.gif"), []byte("x"), 0644))

	res := waitResult(t, w)
	assert.EqualError(t, res.Err, "not an image")
}

func TestWatcherStopCancelsPending(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w, err := New(dir, time.Second, rec.importFile)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.png"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Stop())

	time.Sleep(1200 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestWatchable(t *testing.T) {
	assert.True(t, watchable("/in/a.png"))
	assert.True(t, watchable("/in/B.JPG"))
	assert.False(t, watchable("/in/.a.png"))
	assert.False(t, watchable("/in/a.txt"))
}
