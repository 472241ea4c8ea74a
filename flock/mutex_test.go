package flock

import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/require"

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lock")
	m, err := New(path)
	require.NoError(t, err)

	m.Lock()
	m.Unlock()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected lock file %q: %v", path, err)
	}
}

func TestRLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lock")
	m, err := New(path)
	require.NoError(t, err)

	m.RLock()
	m.RUnlock()
}

func TestSharedReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lock")
	m1, err := New(path)
	require.NoError(t, err)
	m2, err := New(path)
	require.NoError(t, err)

	// two readers can hold the lock at once.
	m1.RLock()
	m2.RLock()
	m2.RUnlock()
	m1.RUnlock()

	// and an exclusive hold is possible afterwards.
	m1.Lock()
	m1.Unlock()
}
