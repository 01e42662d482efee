package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	CompetitionOpen   = "open"
	CompetitionClosed = "closed"
)

// MinVotingWindow is the minimum gap between the submission and voting deadlines.
const MinVotingWindow = 24 * time.Hour

// LeaderboardSize caps both the leaderboard and the stored winners.
const LeaderboardSize = 3

// Competition is a timed contest with a submission window and an optional voting window.
type Competition struct {
	ID                 int           `db:"id" json:"id"`
	Title              string        `db:"title" json:"title"`
	Description        string        `db:"description" json:"description"`
	CreatorID          int           `db:"creator_id" json:"creator_id"`
	SubmissionDeadline time.Time     `db:"submission_deadline" json:"submission_deadline"`
	VotingDeadline     *time.Time    `db:"voting_deadline" json:"voting_deadline,omitempty"`
	Status             string        `db:"status" json:"status"`
	WinnerIDs          pq.Int64Array `db:"winner_ids" json:"winner_ids"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
}

// IsFinalized reports whether the competition reached its terminal state.
func (c Competition) IsFinalized() bool {
	return c.Status == CompetitionClosed
}

// CanSubmit reports whether entries are still accepted at now.
func (c Competition) CanSubmit(now time.Time) bool {
	return c.SubmissionDeadline.IsZero() || now.Before(c.SubmissionDeadline)
}

// CanVote reports whether votes are still accepted at now.
func (c Competition) CanVote(now time.Time) bool {
	if c.IsFinalized() {
		return false
	}
	return c.VotingDeadline == nil || now.Before(*c.VotingDeadline)
}

// VotingOver reports whether a voting deadline exists and now has reached it.
func (c Competition) VotingOver(now time.Time) bool {
	return c.VotingDeadline != nil && !now.Before(*c.VotingDeadline)
}

// CompetitionView is a competition with its read-time flags and expanded relations.
// The flags are derived from the clock on every read and never stored.
type CompetitionView struct {
	Competition
	Creator     *PublicUser `json:"creator,omitempty"`
	Winners     []EntryView `json:"winners"`
	IsFinalized bool        `json:"isFinalized"`
	CanSubmit   bool        `json:"canSubmit"`
	CanVote     bool        `json:"canVote"`
}

// CompetitionSummary is a list row with the creator attached.
type CompetitionSummary struct {
	Competition
	Creator *PublicUser `json:"creator,omitempty"`
}
