package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"devhub/internal/db"
	"devhub/internal/models"
)

// testDSNEnv names a disposable Postgres database. Its tables are truncated by every test.
const testDSNEnv = "TEST_DB_DSN"

// newTestDB connects to the test database, applies the embedded migrations and
// starts from empty tables.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping postgres repository tests", testDSNEnv)
	}
	database, err := db.Connect(dsn, db.Options{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`TRUNCATE users, competitions, competition_entries, votes, chats, messages RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return database
}

func createTestUser(t *testing.T, database *sqlx.DB, username string) int {
	t.Helper()
	var id int
	err := database.Get(&id, `INSERT INTO users (username, name) VALUES ($1, $1) RETURNING id`, username)
	require.NoError(t, err)
	return id
}

func createTestCompetition(t *testing.T, database *sqlx.DB, creatorID int, votingDeadline *time.Time) models.Competition {
	t.Helper()
	submission := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second)
	if votingDeadline != nil {
		submission = votingDeadline.Add(-models.MinVotingWindow)
	}
	comp, err := NewCompetitionRepo(database).CreateCompetition(context.Background(), models.Competition{
		Title:              "Build a CLI",
		CreatorID:          creatorID,
		SubmissionDeadline: submission,
		VotingDeadline:     votingDeadline,
	})
	require.NoError(t, err)
	return comp
}

func createTestEntry(t *testing.T, database *sqlx.DB, competitionID, userID int, submittedAt time.Time) models.Entry {
	t.Helper()
	entry, err := NewEntryRepo(database).CreateEntry(context.Background(), models.Entry{
		CompetitionID: competitionID,
		UserID:        userID,
		RepoURL:       "https://github.com/example/entry",
	})
	require.NoError(t, err)
	_, err = database.Exec(`UPDATE competition_entries SET submitted_at=$2 WHERE id=$1`, entry.ID, submittedAt)
	require.NoError(t, err)
	entry.SubmittedAt = submittedAt
	return entry
}
