package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devhub/internal/models"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrDuplicateVote = errors.New("vote already exists")
)

const entryColumns = `id, competition_id, user_id, repo_url, notes, vote_count, submitted_at`

// leaderboardOrder ranks by votes; ties go to the earliest submission.
const leaderboardOrder = `ORDER BY vote_count DESC, submitted_at ASC, id ASC`

// EntryRepository abstracts competition entry and vote persistence.
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	GetEntry(ctx context.Context, entryID int) (models.Entry, error)
	GetEntriesByIDs(ctx context.Context, ids []int) ([]models.Entry, error)
	ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error)
	TopEntries(ctx context.Context, competitionID int, limit int) ([]models.Entry, error)
	DeleteEntry(ctx context.Context, entryID int) error
	HasVoted(ctx context.Context, entryID int, userID int) (bool, error)
	CastVote(ctx context.Context, entryID int, userID int) (int, error)
}

// EntryRepo is a sqlx implementation of EntryRepository.
type EntryRepo struct {
	db *sqlx.DB
}

// NewEntryRepo constructs an EntryRepo.
func NewEntryRepo(db *sqlx.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// CreateEntry stores a new entry with zero votes.
func (r *EntryRepo) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	var created models.Entry
	err := r.db.QueryRowxContext(ctx, `INSERT INTO competition_entries (competition_id, user_id, repo_url, notes, vote_count)
        VALUES ($1, $2, $3, $4, 0) RETURNING `+entryColumns,
		entry.CompetitionID, entry.UserID, entry.RepoURL, entry.Notes).
		StructScan(&created)
	if isForeignKeyViolation(err) {
		return models.Entry{}, ErrCompetitionNotFound
	}
	return created, err
}

// GetEntry fetches an entry by id.
func (r *EntryRepo) GetEntry(ctx context.Context, entryID int) (models.Entry, error) {
	var entry models.Entry
	err := r.db.GetContext(ctx, &entry, `SELECT `+entryColumns+` FROM competition_entries WHERE id=$1`, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrEntryNotFound
	}
	return entry, err
}

// GetEntriesByIDs returns the entries that still exist, in the order of ids.
func (r *EntryRepo) GetEntriesByIDs(ctx context.Context, ids []int) ([]models.Entry, error) {
	if len(ids) == 0 {
		return []models.Entry{}, nil
	}
	var entries []models.Entry
	if err := r.db.SelectContext(ctx, &entries, `SELECT `+entryColumns+` FROM competition_entries WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, err
	}
	byID := make(map[int]models.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	ordered := make([]models.Entry, 0, len(entries))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// ListEntries returns all entries of a competition in leaderboard order.
func (r *EntryRepo) ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.SelectContext(ctx, &entries, `SELECT `+entryColumns+` FROM competition_entries
        WHERE competition_id=$1 `+leaderboardOrder, competitionID)
	return entries, err
}

// TopEntries returns at most limit entries in leaderboard order.
func (r *EntryRepo) TopEntries(ctx context.Context, competitionID int, limit int) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.SelectContext(ctx, &entries, `SELECT `+entryColumns+` FROM competition_entries
        WHERE competition_id=$1 `+leaderboardOrder+` LIMIT $2`, competitionID, limit)
	return entries, err
}

// DeleteEntry removes an entry and, by cascade, its votes.
func (r *EntryRepo) DeleteEntry(ctx context.Context, entryID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM competition_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// HasVoted checks whether the user already voted for the entry.
func (r *EntryRepo) HasVoted(ctx context.Context, entryID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM votes WHERE entry_id=$1 AND user_id=$2)`, entryID, userID)
	return exists, err
}

// CastVote records a vote and stores the recounted total on the entry, atomically.
// The entry row is locked first so concurrent votes on one entry recount in turn;
// the unique (user_id, entry_id) constraint rejects repeats even under races.
func (r *EntryRepo) CastVote(ctx context.Context, entryID int, userID int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var lockedID int
	if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM competition_entries WHERE id=$1 FOR UPDATE`, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrEntryNotFound
		}
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO votes (user_id, entry_id) VALUES ($1, $2)`, userID, entryID); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateVote
		}
		return 0, err
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM votes WHERE entry_id=$1`, entryID); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE competition_entries SET vote_count=$2 WHERE id=$1`, entryID, count); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
