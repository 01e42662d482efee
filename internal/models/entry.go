package models

import "time"

// Entry is a user's submission to a competition. VoteCount mirrors the votes table.
type Entry struct {
	ID            int       `db:"id" json:"id"`
	CompetitionID int       `db:"competition_id" json:"competition_id"`
	UserID        int       `db:"user_id" json:"user_id"`
	RepoURL       string    `db:"repo_url" json:"repo_url"`
	Notes         string    `db:"notes" json:"notes"`
	VoteCount     int       `db:"vote_count" json:"votes"`
	SubmittedAt   time.Time `db:"submitted_at" json:"submitted_at"`
}

// EntryView is an entry with its submitter attached.
type EntryView struct {
	Entry
	User *PublicUser `json:"user,omitempty"`
}

// Vote is one user's endorsement of one entry.
type Vote struct {
	ID      int       `db:"id" json:"id"`
	UserID  int       `db:"user_id" json:"user_id"`
	EntryID int       `db:"entry_id" json:"entry_id"`
	VotedAt time.Time `db:"voted_at" json:"voted_at"`
}
