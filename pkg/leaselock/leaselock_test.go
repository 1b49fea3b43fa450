package leaselock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "graph.json.lock")
	c := New()

	lease, err := c.Acquire(context.Background(), path, Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file not created: %v", err)
	}

	if err := lease.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("lock file not removed on release")
	}
}

func TestSecondHolderIsRejected(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "graph.json.lock")
	c := New()

	lease, err := c.Acquire(context.Background(), path, Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer lease.Release()

	if _, err := c.Acquire(context.Background(), path, Options{TTL: time.Minute}); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Acquire = %v, want ErrBusy", err)
	}
}

func TestExpiredLeaseIsTakenOver(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "graph.json.lock")
	c := New()

	stale, err := c.Acquire(context.Background(), path, Options{TTL: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	// Simulate a crashed holder: stop renewal without removing the file.
	close(stale.stopCh)
	time.Sleep(30 * time.Millisecond)

	lease, err := c.Acquire(context.Background(), path, Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("takeover of expired lease failed: %v", err)
	}
	defer lease.Release()
}

func TestWithLeaseRunsAndReleases(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "graph.json.lock")
	c := New()

	ran := false
	err := c.WithLease(context.Background(), path, Options{TTL: time.Minute}, func(ctx context.Context) error {
		ran = true
		if ctx.Err() != nil {
			t.Fatal("lease context canceled while held")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLease failed: %v", err)
	}
	if !ran {
		t.Fatal("callback did not run")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("lock file not removed after WithLease")
	}
}
