package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrGetChatIsOrderIndependent(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	repo := NewChatRepo(database)

	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")

	first, created, err := repo.CreateOrGetChat(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, alice, first.User1ID)
	assert.Equal(t, bob, first.User2ID)

	second, created, err := repo.CreateOrGetChat(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var rows int
	require.NoError(t, database.Get(&rows, `SELECT COUNT(*) FROM chats`))
	assert.Equal(t, 1, rows)

	ok, err := repo.IsParticipant(ctx, first.ID, bob)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateOrGetChatRejectsSelfAndUnknownUsers(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	repo := NewChatRepo(database)
	alice := createTestUser(t, database, "alice")

	_, _, err := repo.CreateOrGetChat(ctx, alice, alice)
	assert.ErrorIs(t, err, ErrSelfChat)

	_, _, err = repo.CreateOrGetChat(ctx, alice, alice+100)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetChat(ctx, 404)
	assert.ErrorIs(t, err, ErrChatNotFound)
}
