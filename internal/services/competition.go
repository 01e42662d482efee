package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"devhub/internal/apperror"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repositories"
)

const (
	msgCompetitionNotFound = "Competition not found"
	msgEntryNotFound       = "Entry not found"
	msgAlreadyFinalized    = "Competition already finalized"
)

// CompetitionService owns competition deadlines, voting, ranking and finalization.
type CompetitionService struct {
	comps   repositories.CompetitionRepository
	entries repositories.EntryRepository
	users   repositories.UserRepository
	now     func() time.Time
}

// NewCompetitionService builds a CompetitionService. A nil clock means time.Now.
func NewCompetitionService(comps repositories.CompetitionRepository, entries repositories.EntryRepository, users repositories.UserRepository, now func() time.Time) *CompetitionService {
	if now == nil {
		now = time.Now
	}
	return &CompetitionService{comps: comps, entries: entries, users: users, now: now}
}

// CreateCompetitionInput carries the fields of a new competition.
type CreateCompetitionInput struct {
	Title              string
	Description        string
	SubmissionDeadline *time.Time
	VotingDeadline     *time.Time
	CreatorID          int
}

// SweepResult reports one AutoCloseExpired pass.
type SweepResult struct {
	Closed []int          `json:"closed"`
	Failed map[int]string `json:"failed,omitempty"`
}

// CreateCompetition validates the deadlines and stores an open competition.
func (s *CompetitionService) CreateCompetition(ctx context.Context, in CreateCompetitionInput) (models.Competition, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.SubmissionDeadline == nil || in.SubmissionDeadline.IsZero() {
		return models.Competition{}, apperror.ValidationFailed("title", "Missing title and deadline.")
	}
	if in.VotingDeadline != nil && in.VotingDeadline.Sub(*in.SubmissionDeadline) < models.MinVotingWindow {
		return models.Competition{}, apperror.ValidationFailed("votingDeadline", "Voting deadline must be at least 24 hours after the submission deadline")
	}

	comp, err := s.comps.CreateCompetition(ctx, models.Competition{
		Title:              title,
		Description:        in.Description,
		CreatorID:          in.CreatorID,
		SubmissionDeadline: *in.SubmissionDeadline,
		VotingDeadline:     in.VotingDeadline,
		Status:             models.CompetitionOpen,
	})
	if err != nil {
		return models.Competition{}, apperror.Internal("create competition", err)
	}
	return comp, nil
}

// ListCompetitions returns every competition with its creator attached.
func (s *CompetitionService) ListCompetitions(ctx context.Context) ([]models.CompetitionSummary, error) {
	comps, err := s.comps.ListCompetitions(ctx)
	if err != nil {
		return nil, apperror.Internal("list competitions", err)
	}

	creatorIDs := make([]int, 0, len(comps))
	for _, c := range comps {
		creatorIDs = append(creatorIDs, c.CreatorID)
	}
	users, err := s.publicUsers(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.CompetitionSummary, 0, len(comps))
	for _, c := range comps {
		summaries = append(summaries, models.CompetitionSummary{Competition: c, Creator: users[c.CreatorID]})
	}
	return summaries, nil
}

// GetCompetitionView returns the competition with winners, creator and the flags
// derived from the current time.
func (s *CompetitionService) GetCompetitionView(ctx context.Context, competitionID int) (models.CompetitionView, error) {
	comp, err := s.getCompetition(ctx, competitionID)
	if err != nil {
		return models.CompetitionView{}, err
	}

	winnerIDs := make([]int, 0, len(comp.WinnerIDs))
	for _, id := range comp.WinnerIDs {
		winnerIDs = append(winnerIDs, int(id))
	}
	winners, err := s.entries.GetEntriesByIDs(ctx, winnerIDs)
	if err != nil {
		return models.CompetitionView{}, apperror.Internal("load winners", err)
	}
	winnerViews, err := s.entryViews(ctx, winners)
	if err != nil {
		return models.CompetitionView{}, err
	}
	creators, err := s.publicUsers(ctx, []int{comp.CreatorID})
	if err != nil {
		return models.CompetitionView{}, err
	}

	now := s.now()
	return models.CompetitionView{
		Competition: comp,
		Creator:     creators[comp.CreatorID],
		Winners:     winnerViews,
		IsFinalized: comp.IsFinalized(),
		CanSubmit:   comp.CanSubmit(now),
		CanVote:     comp.CanVote(now),
	}, nil
}

// SubmitEntry adds an entry while the submission window is open.
func (s *CompetitionService) SubmitEntry(ctx context.Context, competitionID int, userID int, repoURL string, notes string) (models.Entry, error) {
	repoURL = strings.TrimSpace(repoURL)
	if competitionID <= 0 || repoURL == "" {
		return models.Entry{}, apperror.ValidationFailed("repoUrl", "Competition ID and repo URL are required")
	}

	comp, err := s.getCompetition(ctx, competitionID)
	if err != nil {
		return models.Entry{}, err
	}
	if s.now().After(comp.SubmissionDeadline) {
		return models.Entry{}, apperror.DeadlineExceeded("Submission deadline is over")
	}

	entry, err := s.entries.CreateEntry(ctx, models.Entry{
		CompetitionID: competitionID,
		UserID:        userID,
		RepoURL:       repoURL,
		Notes:         notes,
	})
	if errors.Is(err, repositories.ErrCompetitionNotFound) {
		return models.Entry{}, apperror.NotFound(msgCompetitionNotFound)
	}
	if err != nil {
		return models.Entry{}, apperror.Internal("create entry", err)
	}
	return entry, nil
}

// ListEntries returns a competition's entries ranked by votes, submitters attached.
func (s *CompetitionService) ListEntries(ctx context.Context, competitionID int) ([]models.EntryView, error) {
	if competitionID <= 0 {
		return nil, apperror.ValidationFailed("competitionId", "Competition ID is required as a query parameter")
	}
	entries, err := s.entries.ListEntries(ctx, competitionID)
	if err != nil {
		return nil, apperror.Internal("list entries", err)
	}
	return s.entryViews(ctx, entries)
}

// CastVote records the user's vote and returns the entry's recounted total.
func (s *CompetitionService) CastVote(ctx context.Context, entryID int, userID int) (int, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return 0, err
	}
	comp, err := s.getCompetition(ctx, entry.CompetitionID)
	if err != nil {
		return 0, err
	}

	voted, err := s.entries.HasVoted(ctx, entryID, userID)
	if err != nil {
		return 0, apperror.Internal("check vote", err)
	}
	if voted {
		return 0, apperror.Duplicate("You have already voted for this entry")
	}
	if comp.VotingDeadline != nil && s.now().After(*comp.VotingDeadline) {
		return 0, apperror.DeadlineExceeded("Voting period has ended")
	}

	count, err := s.entries.CastVote(ctx, entryID, userID)
	switch {
	case errors.Is(err, repositories.ErrDuplicateVote):
		return 0, apperror.Duplicate("You have already voted for this entry")
	case errors.Is(err, repositories.ErrEntryNotFound):
		return 0, apperror.NotFound(msgEntryNotFound)
	case err != nil:
		return 0, apperror.Internal("cast vote", err)
	}

	observability.IncVoteCast()
	publishDomainEvent(ctx, "entry.voted", map[string]interface{}{
		"competition_id": comp.ID,
		"entry_id":       entryID,
		"user_id":        userID,
		"votes":          count,
	})
	return count, nil
}

// DeleteEntry removes the owner's entry while submissions are still open.
func (s *CompetitionService) DeleteEntry(ctx context.Context, entryID int, userID int) error {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}
	comp, err := s.getCompetition(ctx, entry.CompetitionID)
	if err != nil {
		return err
	}
	if s.now().After(comp.SubmissionDeadline) {
		return apperror.DeadlineExceeded("Cannot delete entry after submission deadline")
	}
	if entry.UserID != userID {
		return apperror.Forbidden("You are not authorized to delete this entry")
	}

	if err := s.entries.DeleteEntry(ctx, entryID); err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return apperror.NotFound(msgEntryNotFound)
		}
		return apperror.Internal("delete entry", err)
	}
	return nil
}

// GetLeaderboard returns up to three entries by votes descending, earliest submission first on ties.
func (s *CompetitionService) GetLeaderboard(ctx context.Context, competitionID int) ([]models.EntryView, error) {
	entries, err := s.entries.TopEntries(ctx, competitionID, models.LeaderboardSize)
	if err != nil {
		return nil, apperror.Internal("leaderboard", err)
	}
	return s.entryViews(ctx, entries)
}

// Finalize closes a competition whose voting period is over and stores its winners.
// A second call fails instead of recomputing.
func (s *CompetitionService) Finalize(ctx context.Context, competitionID int, requesterID int) ([]models.EntryView, error) {
	comp, err := s.getCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if comp.IsFinalized() {
		return nil, apperror.InvalidState(msgAlreadyFinalized)
	}
	if !comp.VotingOver(s.now()) {
		return nil, apperror.DeadlineExceeded("Voting period has not ended")
	}

	winners, err := s.close(ctx, comp.ID, "manual")
	if err != nil {
		return nil, err
	}
	log.Printf("competition finalized: competition_id=%d requester_id=%d winners=%d", comp.ID, requesterID, len(winners))
	return s.entryViews(ctx, winners)
}

// AutoCloseExpired closes every open competition whose voting deadline has passed.
// Each competition is handled independently; failures are logged and reported.
func (s *CompetitionService) AutoCloseExpired(ctx context.Context) (SweepResult, error) {
	result := SweepResult{Closed: []int{}, Failed: map[int]string{}}

	expired, err := s.comps.ListExpiredOpen(ctx, s.now())
	if err != nil {
		return result, apperror.Internal("list expired competitions", err)
	}

	for _, comp := range expired {
		if _, err := s.close(ctx, comp.ID, "auto"); err != nil {
			if errors.Is(err, apperror.ErrState) {
				continue
			}
			log.Printf("auto-close failed: competition_id=%d err=%v", comp.ID, err)
			observability.IncAutoCloseFailure()
			result.Failed[comp.ID] = err.Error()
			continue
		}
		result.Closed = append(result.Closed, comp.ID)
	}
	return result, nil
}

func (s *CompetitionService) close(ctx context.Context, competitionID int, trigger string) ([]models.Entry, error) {
	closed, winners, err := s.comps.CloseCompetition(ctx, competitionID, models.LeaderboardSize)
	switch {
	case errors.Is(err, repositories.ErrAlreadyClosed):
		return nil, apperror.InvalidState(msgAlreadyFinalized)
	case errors.Is(err, repositories.ErrCompetitionNotFound):
		return nil, apperror.NotFound(msgCompetitionNotFound)
	case err != nil:
		return nil, apperror.Internal(fmt.Sprintf("close competition %d", competitionID), err)
	}

	observability.IncCompetitionClosed(trigger)
	publishDomainEvent(ctx, "competition.closed", map[string]interface{}{
		"competition_id": closed.ID,
		"trigger":        trigger,
		"winner_ids":     closed.WinnerIDs,
	})
	return winners, nil
}

func (s *CompetitionService) getCompetition(ctx context.Context, competitionID int) (models.Competition, error) {
	comp, err := s.comps.GetCompetition(ctx, competitionID)
	if errors.Is(err, repositories.ErrCompetitionNotFound) {
		return models.Competition{}, apperror.NotFound(msgCompetitionNotFound)
	}
	if err != nil {
		return models.Competition{}, apperror.Internal("get competition", err)
	}
	return comp, nil
}

func (s *CompetitionService) getEntry(ctx context.Context, entryID int) (models.Entry, error) {
	entry, err := s.entries.GetEntry(ctx, entryID)
	if errors.Is(err, repositories.ErrEntryNotFound) {
		return models.Entry{}, apperror.NotFound(msgEntryNotFound)
	}
	if err != nil {
		return models.Entry{}, apperror.Internal("get entry", err)
	}
	return entry, nil
}

func (s *CompetitionService) entryViews(ctx context.Context, entries []models.Entry) ([]models.EntryView, error) {
	userIDs := make([]int, 0, len(entries))
	for _, e := range entries {
		userIDs = append(userIDs, e.UserID)
	}
	users, err := s.publicUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, models.EntryView{Entry: e, User: users[e.UserID]})
	}
	return views, nil
}

func (s *CompetitionService) publicUsers(ctx context.Context, ids []int) (map[int]*models.PublicUser, error) {
	return lookupUsers(ctx, s.users, ids)
}
