package notifications

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emulatorClient connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST and skips the test when none is running.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "gearmarket-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFirestoreRepositoryLifecycle(t *testing.T) {
	client := emulatorClient(t)
	svc, err := NewService(NewFirestoreRepository(client), NewFirestoreWatcher(client), logger.Nop())
	require.NoError(t, err)
	repo := NewFirestoreRepository(client)
	ctx := context.Background()
	userID := "u-" + uuid.NewString()

	first := createRecord(t, svc, userID)
	createRecord(t, svc, userID)
	createRecord(t, svc, "other-"+uuid.NewString())

	stored, err := repo.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, "c1", stored.Data["chatId"])
	assert.False(t, stored.IsRead)
	assert.Nil(t, stored.ReadAt)
	assert.False(t, stored.CreatedAt.IsZero())

	rows, err := repo.ListByUser(ctx, userID, nil, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	until := stored.CreatedAt
	rows, err = repo.ListByUser(ctx, userID, &until, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
	for _, row := range rows {
		assert.False(t, row.CreatedAt.After(until))
	}

	count, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(ctx, first, userID))
	require.NoError(t, svc.MarkRead(ctx, first, userID))
	read, err := repo.Get(ctx, first)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, err := repo.ListUnread(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, svc.Delete(ctx, first, userID))
	_, err = repo.Get(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirestoreWatcherPushesOnceThenOnChange(t *testing.T) {
	client := emulatorClient(t)
	svc, err := NewService(NewFirestoreRepository(client), NewFirestoreWatcher(client), logger.Nop())
	require.NoError(t, err)
	userID := "u-" + uuid.NewString()

	createRecord(t, svc, userID)

	records := make(chan []Record, 16)
	counts := make(chan int64, 16)
	unsubscribe, err := svc.Subscribe(context.Background(), userID, Handlers{
		OnRecords:     func(r []Record) { records <- r },
		OnUnreadCount: func(c int64) { counts <- c },
	})
	require.NoError(t, err)
	defer unsubscribe()

	assert.Len(t, waitRecords(t, records, 1), 1)
	assert.Equal(t, int64(1), waitCount(t, counts, 1))
	select {
	case r := <-records:
		t.Fatalf("unexpected second push before any write: %d records", len(r))
	case <-time.After(300 * time.Millisecond):
	}

	createRecord(t, svc, userID)
	assert.Len(t, waitRecords(t, records, 2), 2)
	assert.Equal(t, int64(2), waitCount(t, counts, 2))
}
