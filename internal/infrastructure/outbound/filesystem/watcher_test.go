package filesystem_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/xraydash/internal/testutil"
)

func startWatcher(t *testing.T, dir string, debounce time.Duration, count *atomic.Int32) {
	t.Helper()
	w, err := filesystem.NewWatcher(dir, debounce, filesystem.TemplateExtensions, &testutil.NoopLogger{}, func() {
		count.Add(1)
	})
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	w.Start()
}

func TestWatcher_DetectsTemplateCreate(t *testing.T) {
	tmpDir := t.TempDir()
	var reloads atomic.Int32
	startWatcher(t, tmpDir, 100*time.Millisecond, &reloads)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "browser.html"), []byte("<p>hi</p>"), 0o644))

	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_DetectsStylesheetModify(t *testing.T) {
	tmpDir := t.TempDir()
	f := filepath.Join(tmpDir, "dashboard.css")
	require.NoError(t, os.WriteFile(f, []byte("body{}"), 0o644))

	var reloads atomic.Int32
	startWatcher(t, tmpDir, 100*time.Millisecond, &reloads)

	require.NoError(t, os.WriteFile(f, []byte("body{color:red}"), 0o644))

	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	var reloads atomic.Int32
	startWatcher(t, tmpDir, 100*time.Millisecond, &reloads)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "page.html.swp"), []byte("x"), 0o644))

	time.Sleep(500 * time.Millisecond)

	assert.Zero(t, reloads.Load())
}

func TestWatcher_Debounce(t *testing.T) {
	tmpDir := t.TempDir()
	var reloads atomic.Int32
	startWatcher(t, tmpDir, 200*time.Millisecond, &reloads)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "base.html"), []byte("v"+string(rune('a'+i))), 0o644))
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	count := reloads.Load()
	assert.GreaterOrEqual(t, count, int32(1))
	assert.LessOrEqual(t, count, int32(2), "bursts are debounced")
}

func TestWatcher_PicksUpNewSubdirectory(t *testing.T) {
	tmpDir := t.TempDir()
	var reloads atomic.Int32
	startWatcher(t, tmpDir, 100*time.Millisecond, &reloads)

	sub := filepath.Join(tmpDir, "partials")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "card.html"), []byte("<div></div>"), 0o644))

	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}
