package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devhub/internal/models"
)

func TestCloseCompetitionStoresWinnersOnce(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	repo := NewCompetitionRepo(database)
	entries := NewEntryRepo(database)

	creator := createTestUser(t, database, "creator")
	voter := createTestUser(t, database, "voter")
	comp := createTestCompetition(t, database, creator, nil)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []int
	for i := 0; i < 4; i++ {
		ids = append(ids, createTestEntry(t, database, comp.ID, creator, base.Add(time.Duration(i)*time.Hour)).ID)
	}
	_, err := entries.CastVote(ctx, ids[3], voter)
	require.NoError(t, err)

	closed, top, err := repo.CloseCompetition(ctx, comp.ID, models.LeaderboardSize)
	require.NoError(t, err)
	assert.Equal(t, models.CompetitionClosed, closed.Status)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{int64(ids[3]), int64(ids[0]), int64(ids[1])}, []int64(closed.WinnerIDs))

	_, _, err = repo.CloseCompetition(ctx, comp.ID, models.LeaderboardSize)
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	stored, err := repo.GetCompetition(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, closed.WinnerIDs, stored.WinnerIDs)
}

func TestCloseCompetitionConcurrentCallsCloseOnce(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	repo := NewCompetitionRepo(database)

	creator := createTestUser(t, database, "creator")
	comp := createTestCompetition(t, database, creator, nil)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _, err := repo.CloseCompetition(ctx, comp.ID, models.LeaderboardSize)
			errs <- err
		}()
	}
	var closedCount, rejected int
	for i := 0; i < 2; i++ {
		err := <-errs
		if err == nil {
			closedCount++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyClosed)
		rejected++
	}
	assert.Equal(t, 1, closedCount)
	assert.Equal(t, 1, rejected)
}

func TestCloseCompetitionUnknown(t *testing.T) {
	database := newTestDB(t)

	_, _, err := NewCompetitionRepo(database).CloseCompetition(context.Background(), 404, models.LeaderboardSize)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestListExpiredOpen(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	repo := NewCompetitionRepo(database)
	creator := createTestUser(t, database, "creator")

	now := time.Now().UTC().Truncate(time.Second)
	expired := now.Add(-time.Hour)
	upcoming := now.Add(time.Hour)
	due := createTestCompetition(t, database, creator, &expired)
	atDeadline := createTestCompetition(t, database, creator, &now)
	createTestCompetition(t, database, creator, &upcoming)
	createTestCompetition(t, database, creator, nil)
	alreadyClosed := createTestCompetition(t, database, creator, &expired)
	_, _, err := repo.CloseCompetition(ctx, alreadyClosed.ID, models.LeaderboardSize)
	require.NoError(t, err)

	comps, err := repo.ListExpiredOpen(ctx, now)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, due.ID, comps[0].ID)
	assert.Equal(t, atDeadline.ID, comps[1].ID)
}
