package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// LeadLister is the read half of the lead repository.
type LeadLister interface {
	List(ctx context.Context) ([]entity.Lead, error)
}

// ChangeNotifier is told that the lead set changed somewhere.
type ChangeNotifier interface {
	LeadsChanged(ctx context.Context)
}

// Feed pushes full lead snapshots, newest first, to every subscriber. Each
// subscriber holds at most one pending snapshot: a slow reader skips straight
// to the latest one instead of blocking the others.
//
// Snapshots are shared between subscribers and must be treated as read-only.
type Feed struct {
	lister LeadLister
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[uint64]chan []entity.Lead
	lastID uint64
}

func NewFeed(lister LeadLister, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		lister: lister,
		logger: logger,
		subs:   make(map[uint64]chan []entity.Lead),
	}
}

// Subscribe returns a channel that first carries the current snapshot and
// then one snapshot per change. It is closed once ctx is done.
func (f *Feed) Subscribe(ctx context.Context) (<-chan []entity.Lead, error) {
	// listing under the lock keeps a concurrent Refresh from slipping a
	// snapshot in between the initial one and registration
	f.mu.Lock()
	initial, err := f.lister.List(ctx)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	ch := make(chan []entity.Lead, 1)
	ch <- initial
	f.lastID++
	id := f.lastID
	f.subs[id] = ch
	f.mu.Unlock()

	context.AfterFunc(ctx, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	})

	return ch, nil
}

// Subscribers reports how many viewers are attached.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Refresh lists the leads once and hands the snapshot to every subscriber.
// With nobody subscribed it does not list at all.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.subs) == 0 {
		return nil
	}
	snapshot, err := f.lister.List(ctx)
	if err != nil {
		return err
	}
	for _, ch := range f.subs {
		offer(ch, snapshot)
	}
	return nil
}

// LeadsChanged implements ChangeNotifier.
func (f *Feed) LeadsChanged(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil {
		f.logger.WarnContext(ctx, "lead feed refresh failed", "error", err)
	}
}

// offer replaces any pending snapshot with s. Callers hold f.mu, so there is
// a single sender per channel.
func offer(ch chan []entity.Lead, s []entity.Lead) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}
