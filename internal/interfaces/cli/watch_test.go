package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/application/plotting"
	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/testutil"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newWatchDataset(t *testing.T, dir, name string) plotting.Dataset {
	t.Helper()
	sim, pat := testutil.SymmetricReports(2)
	return plotting.Dataset{
		Name:           name,
		SimilarityPath: testutil.WriteFile(t, dir, "sa_"+name+".txt", sim),
		PatternPath:    testutil.WriteFile(t, dir, "pa_"+name+".txt", pat),
		FigureSize:     3,
		DPI:            50,
		Output:         filepath.Join(dir, "out", name+".png"),
	}
}

func TestDatasetWatcher_RerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	ds := newWatchDataset(t, dir, "rh111")
	svc, err := plotting.NewService(config.Default(), plotting.Dependencies{})
	require.NoError(t, err)

	out := &syncBuffer{}
	logger := testutil.NewMockLogger()
	dw := newDatasetWatcher(svc, []plotting.Dataset{ds}, nil, logger, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dw.Run(ctx, 50*time.Millisecond, true) }()

	require.Eventually(t, func() bool { return logger.HasMessage("info", "Watching reports") }, 5*time.Second, 10*time.Millisecond)
	require.FileExists(t, ds.Output)
	require.NoError(t, os.Remove(ds.Output))

	sim, _ := testutil.SymmetricReports(2)
	require.NoError(t, os.WriteFile(ds.SimilarityPath, []byte(sim), 0o644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(ds.Output)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool { return strings.Count(out.String(), "OK rh111") >= 2 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestDatasetWatcher_FailureKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	good := newWatchDataset(t, dir, "good")
	bad := newWatchDataset(t, dir, "bad")
	_, pat3 := testutil.SymmetricReports(3)
	require.NoError(t, os.WriteFile(bad.PatternPath, []byte(pat3), 0o644))

	svc, err := plotting.NewService(config.Default(), plotting.Dependencies{})
	require.NoError(t, err)
	out := &syncBuffer{}
	dw := newDatasetWatcher(svc, []plotting.Dataset{bad, good}, nil, nil, out)

	dw.render(context.Background(), []string{"bad", "good", "unknown"})
	assert.Contains(t, out.String(), "FAIL bad")
	assert.Contains(t, out.String(), "PLT_001")
	assert.Contains(t, out.String(), "OK good")
	assert.FileExists(t, good.Output)
	assert.NoFileExists(t, bad.Output)
}

func TestDatasetWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	ds := newWatchDataset(t, dir, "rh111")
	ds.Output = filepath.Join(dir, "out", "rh111.svg")

	svc, err := plotting.NewService(config.Default(), plotting.Dependencies{})
	require.NoError(t, err)
	out := &syncBuffer{}
	dw := newDatasetWatcher(svc, []plotting.Dataset{ds}, nil, nil, out)

	cfg := config.Default()
	cfg.Render.Palette = "Blues"
	reloaded, err := plotting.NewService(cfg, plotting.Dependencies{})
	require.NoError(t, err)

	dw.Reload(context.Background(), reloaded)
	assert.Contains(t, out.String(), "OK rh111")
	data, err := os.ReadFile(ds.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestWatchCmd_UnknownDataset(t *testing.T) {
	cfgPath, _ := writeWorkspace(t, t.TempDir(), "a")
	_, err := execute(t, "--config", cfgPath, "watch", "zz")
	require.Error(t, err)
}

//Personal.AI order the ending
