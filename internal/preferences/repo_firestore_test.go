package preferences

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirestoreRepository_GetMissingAndUpsert(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "gearmarket-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewFirestoreRepository(client)
	userID := "u-" + uuid.NewString()

	missing, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	prefs := Defaults(userID)
	prefs.NewMessage = false
	require.NoError(t, repo.Upsert(ctx, prefs))
	assert.False(t, prefs.UpdatedAt.IsZero())

	stored, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, userID, stored.UserID)
	assert.False(t, stored.NewMessage)
	assert.True(t, stored.TransactionUpdate)

	gate := NewGate(repo, nil)
	assert.False(t, gate.ShouldSend(ctx, userID, "new_message"))
	assert.True(t, gate.ShouldSend(ctx, userID, "payment_status"))
}
