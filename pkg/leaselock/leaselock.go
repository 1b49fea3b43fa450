// Package leaselock provides a file-based lease lock with a TTL and
// background renewal. The graph store persists to a single JSON document
// with no coordination of its own, so the process that owns a document
// takes a lease next to it; a second process starting against the same
// document fails fast instead of silently overwriting state. A crashed
// owner's lease expires and can be taken over.
package leaselock

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrBusy = errors.New("lease lock busy")
	ErrLost = errors.New("lease lock lost")
)

// lockRecord is the on-disk lease document.
type lockRecord struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Client struct{}

type Options struct {
	TTL        time.Duration
	RenewEvery time.Duration

	Wait         bool
	WaitInterval time.Duration
	WaitJitter   time.Duration

	TokenPrefix string
}

type Lease struct {
	// Path is the lock file, Token identifies this holder.
	Path  string
	Token string

	// Context is canceled with ErrLost when a renewal finds the lease
	// taken over, so holders can stop work before corrupting anything.
	Context context.Context

	client *Client
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithLease(ctx context.Context, path string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, path, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release()
	}()
	return fn(lease.Context)
}

func (c *Client) Acquire(ctx context.Context, path string, opts Options) (*Lease, error) {
	if path == "" {
		return nil, errors.New("lease lock path is empty")
	}

	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.RenewEvery <= 0 || opts.RenewEvery >= opts.TTL {
		opts.RenewEvery = max(opts.TTL/2, time.Second)
	}
	if opts.WaitInterval <= 0 {
		opts.WaitInterval = 250 * time.Millisecond
	}
	if opts.WaitJitter < 0 {
		opts.WaitJitter = 0
	}

	tok, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	token := opts.TokenPrefix + tok

	for {
		ok, err := tryAcquire(path, token, opts.TTL)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !opts.Wait {
			return nil, ErrBusy
		}
		if err := sleepWithJitter(ctx, opts.WaitInterval, opts.WaitJitter); err != nil {
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &Lease{
		Path:    path,
		Token:   token,
		Context: leaseCtx,
		client:  c,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}

	go l.renewLoop(opts)

	return l, nil
}

// Release stops renewal and removes the lock file if this holder still
// owns it.
func (l *Lease) Release() error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})

	record, err := readRecord(l.Path)
	if err != nil || record.Token != l.Token {
		return err
	}
	return os.Remove(l.Path)
}

func (l *Lease) renewLoop(opts Options) {
	t := time.NewTicker(opts.RenewEvery)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.Context.Done():
			return
		case <-t.C:
			if err := l.renewOnce(opts.TTL); err != nil {
				l.cancel(err)
				return
			}
		}
	}
}

func (l *Lease) renewOnce(ttl time.Duration) error {
	record, err := readRecord(l.Path)
	if err != nil {
		return err
	}
	if record.Token != l.Token {
		return ErrLost
	}
	return writeRecord(l.Path, lockRecord{
		Token:     l.Token,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// tryAcquire claims the lock file when it is absent, expired, or already
// held by this token. Creation of a fresh file uses O_EXCL so two
// processes racing for a missing lock cannot both win.
func tryAcquire(path string, token string, ttl time.Duration) (bool, error) {
	record := lockRecord{Token: token, ExpiresAt: time.Now().Add(ttl)}
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		_, werr := f.Write(data)
		cerr := f.Close()
		if werr != nil {
			return false, werr
		}
		return true, cerr
	}
	if !errors.Is(err, os.ErrExist) {
		return false, err
	}

	existing, err := readRecord(path)
	if err != nil {
		return false, err
	}
	if existing.Token != token && time.Now().Before(existing.ExpiresAt) {
		return false, nil
	}

	// Expired or own lease: take it over in place.
	return true, writeRecord(path, record)
}

func readRecord(path string) (lockRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lockRecord{}, nil
		}
		return lockRecord{}, err
	}
	var record lockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// Unreadable lock files are treated as expired leases.
		return lockRecord{}, nil
	}
	return record, nil
}

func writeRecord(path string, record lockRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func sleepWithJitter(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int63n(int64(jitter) + 1))
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
