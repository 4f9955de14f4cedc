package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCandidate(t *testing.T) {
	allowed := map[string]bool{"pdf": true, "png": true}

	assert.True(t, isCandidate("/in/scan.pdf", allowed))
	assert.True(t, isCandidate("/in/photo.PNG", allowed))
	assert.False(t, isCandidate("/in/notes.txt", allowed))
	assert.False(t, isCandidate("/in/.hidden.pdf", allowed))
	assert.False(t, isCandidate("/in/noext", allowed))
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}

func TestStartWatcherInitialScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
	}, nil)
	require.NoError(t, err)

	select {
	case p := <-paths:
		assert.Equal(t, filepath.Join(dir, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("expected initial-scan emission")
	}
}

func TestStartWatcherEmitsNewFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}}, nil)
	require.NoError(t, err)

	target := filepath.Join(dir, "dropped.png")
	require.NoError(t, os.WriteFile(target, []byte("png bytes"), 0o644))

	select {
	case p := <-paths:
		assert.Equal(t, target, p)
	case <-time.After(5 * time.Second):
		t.Fatal("expected create event")
	}
}
