// Package balances keeps the latest balance snapshot per session.
package balances

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

// Kind selects which backend endpoint a refresh goes through
type Kind string

const (
	// Load reads the stored balances
	Load Kind = "load"
	// Update asks the backend to resync first
	Update Kind = "update"
)

const mirrorTimeout = 3 * time.Second

// Fetcher performs one balance request
type Fetcher func(ctx context.Context) (model.Balances, error)

// Snapshot is one fetch result
type Snapshot struct {
	Balances  model.Balances
	Seq       uint64
	FetchedAt time.Time
	// Stale is set when a newer refresh started while this one was in flight; the result was not stored
	Stale bool
}

type entry struct {
	started uint64
	stored  Snapshot
	has     bool
	touched time.Time
}

// Book holds one entry per session id
type Book struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time
	mirror  Mirror
}

func NewBook(ttl time.Duration) *Book {
	return &Book{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithMirror makes the book save every stored snapshot to m and fall back to it in Recall
func (b *Book) WithMirror(m Mirror) *Book {
	b.mirror = m
	return b
}

// Latest returns the last stored snapshot for id
func (b *Book) Latest(id string) (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[id]
	if !ok || !e.has {
		return Snapshot{}, false
	}
	e.touched = b.now()
	return e.stored, true
}

// Refresh runs fetch under a fresh sequence number. Concurrent refreshes of the same kind for the same
// session share one fetch. A result is stored only if no newer refresh started meanwhile; a failed
// fetch leaves the stored snapshot untouched.
func (b *Book) Refresh(ctx context.Context, id string, kind Kind, fetch Fetcher) (Snapshot, error) {
	v, err, _ := b.group.Do(id+"/"+string(kind), func() (any, error) {
		return b.run(ctx, id, fetch)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Force is Refresh without coalescing: fetch always runs, so the result reflects the backend
// as of this call. It still takes a sequence number, an older refresh finishing later is dropped.
func (b *Book) Force(ctx context.Context, id string, fetch Fetcher) (Snapshot, error) {
	return b.run(ctx, id, fetch)
}

func (b *Book) run(ctx context.Context, id string, fetch Fetcher) (Snapshot, error) {
	seq := b.begin(id)

	balances, err := fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := b.commit(id, Snapshot{Balances: balances, Seq: seq, FetchedAt: b.now()})
	if !snap.Stale && b.mirror != nil {
		if err := b.mirror.Save(ctx, id, snap); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("failed to mirror balance snapshot")
		}
	}
	return snap, nil
}

func (b *Book) begin(id string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[id]
	if !ok {
		e = &entry{}
		b.entries[id] = e
	}
	e.started++
	e.touched = b.now()
	return e.started
}

func (b *Book) commit(id string, snap Snapshot) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[id]
	if !ok || snap.Seq != e.started {
		// forgotten, or a newer refresh is in flight or done
		snap.Stale = true
		logger.GetLogger().Debug().Uint64("seq", snap.Seq).Msg("dropping stale balance snapshot")
		return snap
	}
	e.stored = snap
	e.has = true
	e.touched = b.now()
	return snap
}

// Recall is Latest with a fallback to the mirror. A mirrored snapshot seeds the entry.
func (b *Book) Recall(ctx context.Context, id string) (Snapshot, bool) {
	if snap, ok := b.Latest(id); ok || b.mirror == nil {
		return snap, ok
	}

	snap, ok, err := b.mirror.Load(ctx, id)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to load mirrored balance snapshot")
		return Snapshot{}, false
	}
	if !ok {
		return Snapshot{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	e, exists := b.entries[id]
	if !exists {
		e = &entry{}
		b.entries[id] = e
	}
	if e.has {
		// a refresh finished while the mirror was read
		return e.stored, true
	}
	snap.Seq = e.started
	e.stored = snap
	e.has = true
	e.touched = b.now()
	return snap, true
}

// Forget drops the entry for id, mirrored copy included. In-flight refreshes for it will not be stored.
func (b *Book) Forget(id string) {
	b.mu.Lock()
	delete(b.entries, id)
	b.mu.Unlock()

	if b.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := b.mirror.Delete(ctx, id); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("failed to delete mirrored balance snapshot")
		}
	}
}

// Len returns the number of tracked sessions
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Sweep removes entries idle for longer than the TTL and returns how many were removed
func (b *Book) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	deadline := b.now().Add(-b.ttl)
	removed := 0
	for id, e := range b.entries {
		if e.touched.Before(deadline) {
			delete(b.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries every interval until ctx is done
func (b *Book) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.Sweep(); n > 0 {
				logger.GetLogger().Debug().Int("removed", n).Int("remaining", b.Len()).Msg("expired balance snapshots cleared")
			}
		}
	}
}
