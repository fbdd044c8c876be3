package notifications

import (
	"context"
	"sync"
)

// Scope selects which slice of a user's records a feed tracks.
type Scope string

const (
	ScopeRecords Scope = "records"
	ScopeUnread  Scope = "unread"
)

// ChangeFeed signals that a user's records may have changed. Signals coalesce:
// a reader sees at least one tick after any burst of writes.
type ChangeFeed interface {
	Changes() <-chan struct{}
	Err() error
	Close() error
}

// Watcher produces change feeds per user and scope. Notify is called after a
// mutation by writers that go through this process; store-native watchers may
// ignore it.
type Watcher interface {
	Watch(ctx context.Context, userID string, scope Scope) (ChangeFeed, error)
	Notify(ctx context.Context, userID string) error
}

// LocalWatcher fans change signals out to feeds opened in this process.
type LocalWatcher struct {
	mu    sync.Mutex
	feeds map[string]map[*localFeed]struct{}
}

func NewLocalWatcher() *LocalWatcher {
	return &LocalWatcher{feeds: map[string]map[*localFeed]struct{}{}}
}

func (w *LocalWatcher) Watch(_ context.Context, userID string, _ Scope) (ChangeFeed, error) {
	feed := &localFeed{ch: make(chan struct{}, 1), owner: w, userID: userID}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.feeds[userID] == nil {
		w.feeds[userID] = map[*localFeed]struct{}{}
	}
	w.feeds[userID][feed] = struct{}{}
	return feed, nil
}

func (w *LocalWatcher) Notify(_ context.Context, userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for feed := range w.feeds[userID] {
		feed.signal()
	}
	return nil
}

func (w *LocalWatcher) remove(feed *localFeed) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.feeds[feed.userID], feed)
	if len(w.feeds[feed.userID]) == 0 {
		delete(w.feeds, feed.userID)
	}
}

type localFeed struct {
	ch     chan struct{}
	owner  *LocalWatcher
	userID string
	once   sync.Once
}

func (f *localFeed) Changes() <-chan struct{} { return f.ch }

func (f *localFeed) Err() error { return nil }

func (f *localFeed) Close() error {
	f.once.Do(func() {
		f.owner.remove(f)
		close(f.ch)
	})
	return nil
}

// signal is called with the owner lock held, so it never races Close.
func (f *localFeed) signal() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}
