package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_DebouncedChange(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "prismicgen.yaml")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o600))

	fw, err := NewFileWatcher([]string{watched}, 50*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })

	var (
		mu      sync.Mutex
		changes []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		fw.Run(ctx, func(p string) {
			mu.Lock()
			changes = append(changes, p)
			mu.Unlock()
		})
	}()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte{byte('b' + i)}, 0o600))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) > 0
	}, 2*time.Second, 10*time.Millisecond)

	// Let any stray timer fire before checking the burst collapsed.
	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	abs, err := filepath.Abs(watched)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, changes)
}

func TestFileWatcher_MissingFileInExistingDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "link-resolver.yaml")

	fw, err := NewFileWatcher([]string{target}, 10*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })

	got := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx, func(p string) {
		select {
		case got <- p:
		default:
		}
	})

	require.NoError(t, os.WriteFile(target, []byte("rules: []\n"), 0o600))
	select {
	case p := <-got:
		assert.Equal(t, target, p)
	case <-time.After(2 * time.Second):
		t.Fatal("create event not reported")
	}
}

func TestNewFileWatcher_NoDirectories(t *testing.T) {
	_, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing", "x.yaml")}, time.Millisecond, nil)
	require.Error(t, err)
}
