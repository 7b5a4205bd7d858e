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
	"go.uber.org/goleak"

	"github.com/termfx/hlebhint/internal/framework"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMarkerCreationResetsDetection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "Bootstrap"), 0o755))

	detector := framework.NewDetector(framework.WithRecheckProbability(0))
	require.False(t, detector.Detect(root))

	w, err := New(root, detector, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, framework.DefaultMarker), []byte("<?php\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Resets() > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, detector.Detect(root))
}

func TestConfigChangeCallback(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))

	var mu sync.Mutex
	var seen []string

	w, err := New(root, framework.NewDetector(), nil)
	require.NoError(t, err)
	w.OnChange(func(path string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, filepath.Base(path))
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "main.php"), []byte("<?php\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, name := range seen {
			if name == "main.php" {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, w.Resets())
}

func TestMarkerDirs(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, framework.NewDetector(), nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, []string{
		filepath.Join(root, "app"),
		filepath.Join(root, "app", "Bootstrap"),
	}, w.markerDirs())
}

func TestStartTwice(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
}

func TestCancelStopsLoop(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
	require.NoError(t, w.Close())
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New("", nil, nil)
	assert.Error(t, err)
}
