package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"devhub/internal/models"
	"devhub/internal/repositories"
)

// memoryStore is an in-process stand-in for the Postgres repositories, used where a
// test walks through several state transitions.
type memoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int
	comps    map[int]models.Competition
	entries  map[int]models.Entry
	votes    map[[2]int]bool
	users    map[int]models.PublicUser
	chats    map[int]models.Chat
	messages map[int]models.Message
}

func newMemoryStore(now func() time.Time, users ...models.PublicUser) *memoryStore {
	s := &memoryStore{
		now:      now,
		comps:    map[int]models.Competition{},
		entries:  map[int]models.Entry{},
		votes:    map[[2]int]bool{},
		users:    map[int]models.PublicUser{},
		chats:    map[int]models.Chat{},
		messages: map[int]models.Message{},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) CreateCompetition(_ context.Context, comp models.Competition) (models.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp.ID = s.id()
	comp.Status = models.CompetitionOpen
	comp.CreatedAt = s.now()
	s.comps[comp.ID] = comp
	return comp, nil
}

func (s *memoryStore) GetCompetition(_ context.Context, id int) (models.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.comps[id]
	if !ok {
		return models.Competition{}, repositories.ErrCompetitionNotFound
	}
	return comp, nil
}

func (s *memoryStore) ListCompetitions(_ context.Context) ([]models.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Competition, 0, len(s.comps))
	for _, c := range s.comps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memoryStore) ListExpiredOpen(_ context.Context, now time.Time) ([]models.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Competition{}
	for _, c := range s.comps {
		if c.Status != models.CompetitionClosed && c.VotingDeadline != nil && !c.VotingDeadline.After(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) CloseCompetition(_ context.Context, id int, winners int) (models.Competition, []models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.comps[id]
	if !ok {
		return models.Competition{}, nil, repositories.ErrCompetitionNotFound
	}
	if comp.Status == models.CompetitionClosed {
		return models.Competition{}, nil, repositories.ErrAlreadyClosed
	}
	top := s.ranked(id)
	if len(top) > winners {
		top = top[:winners]
	}
	ids := pq.Int64Array{}
	for _, e := range top {
		ids = append(ids, int64(e.ID))
	}
	comp.Status = models.CompetitionClosed
	comp.WinnerIDs = ids
	s.comps[id] = comp
	return comp, top, nil
}

func (s *memoryStore) ranked(competitionID int) []models.Entry {
	out := []models.Entry{}
	for _, e := range s.entries {
		if e.CompetitionID == competitionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount > out[j].VoteCount
		}
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memoryStore) CreateEntry(_ context.Context, entry models.Entry) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comps[entry.CompetitionID]; !ok {
		return models.Entry{}, repositories.ErrCompetitionNotFound
	}
	entry.ID = s.id()
	entry.VoteCount = 0
	entry.SubmittedAt = s.now()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *memoryStore) GetEntry(_ context.Context, id int) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return models.Entry{}, repositories.ErrEntryNotFound
	}
	return e, nil
}

func (s *memoryStore) GetEntriesByIDs(_ context.Context, ids []int) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Entry{}
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) ListEntries(_ context.Context, competitionID int) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranked(competitionID), nil
}

func (s *memoryStore) TopEntries(_ context.Context, competitionID int, limit int) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.ranked(competitionID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) DeleteEntry(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return repositories.ErrEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *memoryStore) HasVoted(_ context.Context, entryID int, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[[2]int{userID, entryID}], nil
}

func (s *memoryStore) CastVote(_ context.Context, entryID int, userID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return 0, repositories.ErrEntryNotFound
	}
	key := [2]int{userID, entryID}
	if s.votes[key] {
		return 0, repositories.ErrDuplicateVote
	}
	s.votes[key] = true
	count := 0
	for k := range s.votes {
		if k[1] == entryID {
			count++
		}
	}
	e.VoteCount = count
	s.entries[entryID] = e
	return count, nil
}

func (s *memoryStore) GetPublicUser(_ context.Context, id int) (models.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.PublicUser{}, repositories.ErrUserNotFound
	}
	return u, nil
}

func (s *memoryStore) GetPublicUsers(_ context.Context, ids []int) ([]models.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PublicUser{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memoryStore) CreateOrGetChat(_ context.Context, userID int, friendID int) (models.Chat, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == friendID {
		return models.Chat{}, false, repositories.ErrSelfChat
	}
	u1, u2 := userID, friendID
	if u1 > u2 {
		u1, u2 = u2, u1
	}
	for _, c := range s.chats {
		if c.User1ID == u1 && c.User2ID == u2 {
			return c, false, nil
		}
	}
	now := s.now()
	c := models.Chat{ID: s.id(), User1ID: u1, User2ID: u2, CreatedAt: now, UpdatedAt: now}
	s.chats[c.ID] = c
	return c, true, nil
}

func (s *memoryStore) IsParticipant(_ context.Context, chatID int, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	return ok && c.HasParticipant(userID), nil
}

func (s *memoryStore) GetChat(_ context.Context, chatID int) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return models.Chat{}, repositories.ErrChatNotFound
	}
	return c, nil
}

func (s *memoryStore) ListChats(_ context.Context, userID int) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Chat{}
	for _, c := range s.chats {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memoryStore) CreateChatMessage(_ context.Context, chatID int, senderID int, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return models.Message{}, repositories.ErrChatNotFound
	}
	msg := models.Message{ID: s.id(), ChatID: chatID, SenderID: senderID, Content: content, CreatedAt: s.now()}
	s.messages[msg.ID] = msg
	c.LatestMessageID = &msg.ID
	c.UpdatedAt = msg.CreatedAt
	s.chats[chatID] = c
	return msg, nil
}

func (s *memoryStore) ListChatMessages(_ context.Context, chatID int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) GetMessagesByIDs(_ context.Context, ids []int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	for _, id := range ids {
		if m, ok := s.messages[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

var (
	_ repositories.CompetitionRepository = (*memoryStore)(nil)
	_ repositories.EntryRepository       = (*memoryStore)(nil)
	_ repositories.UserRepository        = (*memoryStore)(nil)
	_ repositories.ChatRepository        = (*memoryStore)(nil)
	_ repositories.MessageRepository     = (*memoryStore)(nil)
)
