package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrLockTimeout is returned when another live process keeps a report locked
var ErrLockTimeout = errors.New("timeout waiting for lock")

// AtomicWriteConfig controls how reports are written
type AtomicWriteConfig struct {
	UseFsync    bool          // fsync the temp file before the rename
	LockTimeout time.Duration // max wait for a lock held by another process
	Perm        os.FileMode   // mode of newly created files
}

// DefaultAtomicConfig returns the settings used by the CLI
func DefaultAtomicConfig() AtomicWriteConfig {
	return AtomicWriteConfig{
		LockTimeout: 5 * time.Second,
		Perm:        0o644,
	}
}

// AtomicWriter replaces files through a temp file and a rename. A
// <path>.lock file holding the writer's pid serialises writers across
// processes; locks left by dead processes are taken over.
type AtomicWriter struct {
	config AtomicWriteConfig
	mu     sync.Mutex
	locks  map[string]*os.File
}

// NewAtomicWriter creates a writer
func NewAtomicWriter(config AtomicWriteConfig) *AtomicWriter {
	if config.Perm == 0 {
		config.Perm = 0o644
	}
	return &AtomicWriter{
		config: config,
		locks:  make(map[string]*os.File),
	}
}

// WriteFile replaces path with data. Readers see either the old or the new
// content, never a partial write. An existing file keeps its mode.
func (aw *AtomicWriter) WriteFile(path string, data []byte) error {
	if err := aw.acquireLock(path); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer aw.releaseLock(path)

	perm := aw.config.Perm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if aw.config.UseFsync {
		if err := tmp.Sync(); err != nil {
			cleanup()
			return fmt.Errorf("sync %s: %w", tmpPath, err)
		}
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

func (aw *AtomicWriter) acquireLock(path string) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if _, held := aw.locks[path]; held {
		return nil
	}

	lockPath := path + ".lock"
	deadline := time.Now().Add(aw.config.LockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			aw.locks[path] = f
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock file: %w", err)
		}
		if isLockStale(lockPath) {
			os.Remove(lockPath)
			continue
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (aw *AtomicWriter) releaseLock(path string) {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	f, held := aw.locks[path]
	if !held {
		return
	}
	f.Close()
	os.Remove(path + ".lock")
	delete(aw.locks, path)
}

// isLockStale reports whether the pid recorded in a lock file is gone
func isLockStale(lockPath string) bool {
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return true
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return true
	}
	return !isProcessAlive(pid)
}
