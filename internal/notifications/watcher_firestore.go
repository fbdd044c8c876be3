package notifications

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreWatcher listens to query snapshots, so writes from any client are
// observed without Notify.
type FirestoreWatcher struct {
	client *firestore.Client
}

func NewFirestoreWatcher(client *firestore.Client) *FirestoreWatcher {
	return &FirestoreWatcher{client: client}
}

func (w *FirestoreWatcher) Watch(ctx context.Context, userID string, scope Scope) (ChangeFeed, error) {
	query := w.client.Collection(Collection).Where("userId", "==", userID)
	if scope == ScopeUnread {
		query = query.Where("isRead", "==", false)
	} else {
		query = query.Limit(subscribeFetchLimit)
	}

	ctx, cancel := context.WithCancel(ctx)
	feed := &firestoreFeed{
		iter:   query.Snapshots(ctx),
		ch:     make(chan struct{}, 1),
		cancel: cancel,
	}
	go feed.pump()
	return feed, nil
}

func (w *FirestoreWatcher) Notify(context.Context, string) error { return nil }

type snapshotSource interface {
	Next() (*firestore.QuerySnapshot, error)
	Stop()
}

type firestoreFeed struct {
	iter   snapshotSource
	ch     chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// pump drops the listener's initial snapshot: subscribers read the current
// state themselves before waiting on Changes.
func (f *firestoreFeed) pump() {
	defer close(f.ch)
	initial := true
	for {
		if _, err := f.iter.Next(); err != nil {
			if status.Code(err) != codes.Canceled {
				f.mu.Lock()
				f.err = err
				f.mu.Unlock()
			}
			return
		}
		if initial {
			initial = false
			continue
		}
		select {
		case f.ch <- struct{}{}:
		default:
		}
	}
}

func (f *firestoreFeed) Changes() <-chan struct{} { return f.ch }

func (f *firestoreFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *firestoreFeed) Close() error {
	f.cancel()
	f.iter.Stop()
	return nil
}
