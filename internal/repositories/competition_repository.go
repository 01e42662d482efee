package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devhub/internal/models"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrAlreadyClosed       = errors.New("competition already closed")
)

const competitionColumns = `id, title, description, creator_id, submission_deadline, voting_deadline, status, winner_ids, created_at`

// CompetitionRepository abstracts competition persistence.
type CompetitionRepository interface {
	CreateCompetition(ctx context.Context, comp models.Competition) (models.Competition, error)
	GetCompetition(ctx context.Context, competitionID int) (models.Competition, error)
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
	ListExpiredOpen(ctx context.Context, now time.Time) ([]models.Competition, error)
	CloseCompetition(ctx context.Context, competitionID int, winners int) (models.Competition, []models.Entry, error)
}

// CompetitionRepo is a sqlx implementation of CompetitionRepository.
type CompetitionRepo struct {
	db *sqlx.DB
}

// NewCompetitionRepo constructs a CompetitionRepo.
func NewCompetitionRepo(db *sqlx.DB) *CompetitionRepo {
	return &CompetitionRepo{db: db}
}

// CreateCompetition inserts an open competition and returns the stored row.
func (r *CompetitionRepo) CreateCompetition(ctx context.Context, comp models.Competition) (models.Competition, error) {
	var created models.Competition
	err := r.db.QueryRowxContext(ctx, `INSERT INTO competitions (title, description, creator_id, submission_deadline, voting_deadline, status)
        VALUES ($1, $2, $3, $4, $5, 'open') RETURNING `+competitionColumns,
		comp.Title, comp.Description, comp.CreatorID, comp.SubmissionDeadline, comp.VotingDeadline).
		StructScan(&created)
	return created, err
}

// GetCompetition fetches a competition by id.
func (r *CompetitionRepo) GetCompetition(ctx context.Context, competitionID int) (models.Competition, error) {
	var comp models.Competition
	err := r.db.GetContext(ctx, &comp, `SELECT `+competitionColumns+` FROM competitions WHERE id=$1`, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Competition{}, ErrCompetitionNotFound
	}
	return comp, err
}

// ListCompetitions returns every competition, newest first.
func (r *CompetitionRepo) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	var comps []models.Competition
	err := r.db.SelectContext(ctx, &comps, `SELECT `+competitionColumns+` FROM competitions ORDER BY created_at DESC, id DESC`)
	return comps, err
}

// ListExpiredOpen returns open competitions whose voting deadline is at or before now.
func (r *CompetitionRepo) ListExpiredOpen(ctx context.Context, now time.Time) ([]models.Competition, error) {
	var comps []models.Competition
	err := r.db.SelectContext(ctx, &comps, `SELECT `+competitionColumns+` FROM competitions
        WHERE status <> 'closed' AND voting_deadline IS NOT NULL AND voting_deadline <= $1
        ORDER BY voting_deadline ASC, id ASC`, now)
	return comps, err
}

// CloseCompetition ranks the entries, stores the top ones as winners and closes the
// competition in one transaction. The row lock makes concurrent closes fail with
// ErrAlreadyClosed instead of recomputing.
func (r *CompetitionRepo) CloseCompetition(ctx context.Context, competitionID int, winners int) (models.Competition, []models.Entry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Competition{}, nil, err
	}
	defer tx.Rollback()

	var status string
	if err := tx.GetContext(ctx, &status, `SELECT status FROM competitions WHERE id=$1 FOR UPDATE`, competitionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Competition{}, nil, ErrCompetitionNotFound
		}
		return models.Competition{}, nil, err
	}
	if status == models.CompetitionClosed {
		return models.Competition{}, nil, ErrAlreadyClosed
	}

	var top []models.Entry
	if err := tx.SelectContext(ctx, &top, `SELECT `+entryColumns+` FROM competition_entries
        WHERE competition_id=$1 `+leaderboardOrder+` LIMIT $2`, competitionID, winners); err != nil {
		return models.Competition{}, nil, err
	}
	winnerIDs := make([]int64, 0, len(top))
	for _, entry := range top {
		winnerIDs = append(winnerIDs, int64(entry.ID))
	}

	var closed models.Competition
	if err := tx.QueryRowxContext(ctx, `UPDATE competitions SET status='closed', winner_ids=$2
        WHERE id=$1 RETURNING `+competitionColumns, competitionID, pq.Int64Array(winnerIDs)).
		StructScan(&closed); err != nil {
		return models.Competition{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return models.Competition{}, nil, err
	}
	return closed, top, nil
}
