package notifications

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeSnapshots struct {
	next chan error
}

func (f *fakeSnapshots) Next() (*firestore.QuerySnapshot, error) {
	err, ok := <-f.next
	if !ok {
		return nil, status.Error(codes.Canceled, "listener stopped")
	}
	if err != nil {
		return nil, err
	}
	return &firestore.QuerySnapshot{}, nil
}

func (f *fakeSnapshots) Stop() {}

func startFirestoreFeed(src snapshotSource) *firestoreFeed {
	feed := &firestoreFeed{iter: src, ch: make(chan struct{}, 1), cancel: func() {}}
	go feed.pump()
	return feed
}

func TestFirestoreFeedSkipsInitialSnapshot(t *testing.T) {
	src := &fakeSnapshots{next: make(chan error)}
	feed := startFirestoreFeed(src)

	src.next <- nil
	select {
	case <-feed.Changes():
		t.Fatal("initial snapshot must not signal a change")
	case <-time.After(50 * time.Millisecond):
	}

	src.next <- nil
	select {
	case _, ok := <-feed.Changes():
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected a change signal for the second snapshot")
	}

	boom := errors.New("listen stream reset")
	src.next <- boom
	select {
	case _, ok := <-feed.Changes():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("feed should close after a listener error")
	}
	assert.ErrorIs(t, feed.Err(), boom)
	assert.NoError(t, feed.Close())
}

func TestFirestoreFeedCancellationIsNotAnError(t *testing.T) {
	src := &fakeSnapshots{next: make(chan error)}
	feed := startFirestoreFeed(src)

	close(src.next)
	select {
	case _, ok := <-feed.Changes():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("feed should close when the listener is canceled")
	}
	assert.NoError(t, feed.Err())
}
