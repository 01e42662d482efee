package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"devhub/internal/models"
	"devhub/internal/repositories"
	"devhub/internal/services"
)

type CompetitionRepositoryMock struct {
	mock.Mock
}

func (m *CompetitionRepositoryMock) CreateCompetition(ctx context.Context, comp models.Competition) (models.Competition, error) {
	args := m.Called(ctx, comp)
	var created models.Competition
	if val := args.Get(0); val != nil {
		created = val.(models.Competition)
	}
	return created, args.Error(1)
}

func (m *CompetitionRepositoryMock) GetCompetition(ctx context.Context, competitionID int) (models.Competition, error) {
	args := m.Called(ctx, competitionID)
	var comp models.Competition
	if val := args.Get(0); val != nil {
		comp = val.(models.Competition)
	}
	return comp, args.Error(1)
}

func (m *CompetitionRepositoryMock) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	args := m.Called(ctx)
	var list []models.Competition
	if val := args.Get(0); val != nil {
		list = val.([]models.Competition)
	}
	return list, args.Error(1)
}

func (m *CompetitionRepositoryMock) ListExpiredOpen(ctx context.Context, now time.Time) ([]models.Competition, error) {
	args := m.Called(ctx, now)
	var list []models.Competition
	if val := args.Get(0); val != nil {
		list = val.([]models.Competition)
	}
	return list, args.Error(1)
}

func (m *CompetitionRepositoryMock) CloseCompetition(ctx context.Context, competitionID int, winners int) (models.Competition, []models.Entry, error) {
	args := m.Called(ctx, competitionID, winners)
	var comp models.Competition
	if val := args.Get(0); val != nil {
		comp = val.(models.Competition)
	}
	var entries []models.Entry
	if val := args.Get(1); val != nil {
		entries = val.([]models.Entry)
	}
	return comp, entries, args.Error(2)
}

type EntryRepositoryMock struct {
	mock.Mock
}

func (m *EntryRepositoryMock) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	args := m.Called(ctx, entry)
	var created models.Entry
	if val := args.Get(0); val != nil {
		created = val.(models.Entry)
	}
	return created, args.Error(1)
}

func (m *EntryRepositoryMock) GetEntry(ctx context.Context, entryID int) (models.Entry, error) {
	args := m.Called(ctx, entryID)
	var entry models.Entry
	if val := args.Get(0); val != nil {
		entry = val.(models.Entry)
	}
	return entry, args.Error(1)
}

func (m *EntryRepositoryMock) GetEntriesByIDs(ctx context.Context, ids []int) ([]models.Entry, error) {
	args := m.Called(ctx, ids)
	var list []models.Entry
	if val := args.Get(0); val != nil {
		list = val.([]models.Entry)
	}
	return list, args.Error(1)
}

func (m *EntryRepositoryMock) ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error) {
	args := m.Called(ctx, competitionID)
	var list []models.Entry
	if val := args.Get(0); val != nil {
		list = val.([]models.Entry)
	}
	return list, args.Error(1)
}

func (m *EntryRepositoryMock) TopEntries(ctx context.Context, competitionID int, limit int) ([]models.Entry, error) {
	args := m.Called(ctx, competitionID, limit)
	var list []models.Entry
	if val := args.Get(0); val != nil {
		list = val.([]models.Entry)
	}
	return list, args.Error(1)
}

func (m *EntryRepositoryMock) DeleteEntry(ctx context.Context, entryID int) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *EntryRepositoryMock) HasVoted(ctx context.Context, entryID int, userID int) (bool, error) {
	args := m.Called(ctx, entryID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *EntryRepositoryMock) CastVote(ctx context.Context, entryID int, userID int) (int, error) {
	args := m.Called(ctx, entryID, userID)
	return args.Int(0), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetPublicUser(ctx context.Context, userID int) (models.PublicUser, error) {
	args := m.Called(ctx, userID)
	var user models.PublicUser
	if val := args.Get(0); val != nil {
		user = val.(models.PublicUser)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetPublicUsers(ctx context.Context, ids []int) ([]models.PublicUser, error) {
	args := m.Called(ctx, ids)
	var users []models.PublicUser
	if val := args.Get(0); val != nil {
		users = val.([]models.PublicUser)
	}
	return users, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateOrGetChat(ctx context.Context, userID int, friendID int) (models.Chat, bool, error) {
	args := m.Called(ctx, userID, friendID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Bool(1), args.Error(2)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, userID int) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	var list []models.Chat
	if val := args.Get(0); val != nil {
		list = val.([]models.Chat)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateChatMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListChatMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessagesByIDs(ctx context.Context, ids []int) ([]models.Message, error) {
	args := m.Called(ctx, ids)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) NotifyNewMessage(chat models.Chat, msg models.MessageView) {
	m.Called(chat, msg)
}

var _ repositories.CompetitionRepository = (*CompetitionRepositoryMock)(nil)
var _ repositories.EntryRepository = (*EntryRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ services.Notifier = (*NotifierMock)(nil)
