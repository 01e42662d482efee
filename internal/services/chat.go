package services

import (
	"context"
	"errors"
	"strings"

	"devhub/internal/apperror"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repositories"
)

// Notifier pushes persisted chat activity to connected realtime clients.
type Notifier interface {
	NotifyNewMessage(chat models.Chat, msg models.MessageView)
}

// ChatRelations selects which relations to expand on a chat.
type ChatRelations struct {
	Participants  bool
	LatestMessage bool
}

// AllChatRelations expands everything a chat list needs.
var AllChatRelations = ChatRelations{Participants: true, LatestMessage: true}

// ChatService owns private chats and their messages.
type ChatService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier Notifier
}

// NewChatService builds a ChatService. notifier may be nil.
func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, notifier Notifier) *ChatService {
	return &ChatService{chats: chats, messages: messages, users: users, notifier: notifier}
}

// AccessOrCreateChat returns the private chat between the two users, creating it if
// needed. The bool reports whether it was created by this call.
func (s *ChatService) AccessOrCreateChat(ctx context.Context, requesterID int, otherUserID int) (models.ChatView, bool, error) {
	if otherUserID <= 0 {
		return models.ChatView{}, false, apperror.ValidationFailed("userId", "User ID is required")
	}
	if otherUserID == requesterID {
		return models.ChatView{}, false, apperror.ValidationFailed("userId", "Cannot start a chat with yourself")
	}
	if _, err := s.users.GetPublicUser(ctx, otherUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.ChatView{}, false, apperror.NotFound("User not found")
		}
		return models.ChatView{}, false, apperror.Internal("get user", err)
	}

	chat, created, err := s.chats.CreateOrGetChat(ctx, requesterID, otherUserID)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return models.ChatView{}, false, apperror.NotFound("User not found")
	case errors.Is(err, repositories.ErrSelfChat):
		return models.ChatView{}, false, apperror.ValidationFailed("userId", "Cannot start a chat with yourself")
	case err != nil:
		return models.ChatView{}, false, apperror.Internal("create chat", err)
	}

	views, err := s.expand(ctx, []models.Chat{chat}, AllChatRelations)
	if err != nil {
		return models.ChatView{}, false, err
	}
	return views[0], created, nil
}

// ListMyChats returns the user's chats, most recently updated first.
func (s *ChatService) ListMyChats(ctx context.Context, userID int) ([]models.ChatView, error) {
	chats, err := s.chats.ListChats(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("list chats", err)
	}
	return s.expand(ctx, chats, AllChatRelations)
}

// SendMessage stores a message from a participant and relays it to connected clients.
func (s *ChatService) SendMessage(ctx context.Context, chatID int, senderID int, content string) (models.MessageView, error) {
	if chatID <= 0 || strings.TrimSpace(content) == "" {
		return models.MessageView{}, apperror.ValidationFailed("content", "chatId and content are required")
	}
	chat, err := s.participantChat(ctx, chatID, senderID)
	if err != nil {
		return models.MessageView{}, err
	}

	msg, err := s.messages.CreateChatMessage(ctx, chat.ID, senderID, content)
	if errors.Is(err, repositories.ErrChatNotFound) {
		return models.MessageView{}, apperror.NotFound("Chat not found")
	}
	if err != nil {
		return models.MessageView{}, apperror.Internal("create message", err)
	}

	views, err := s.messageViews(ctx, []models.Message{msg})
	if err != nil {
		return models.MessageView{}, err
	}
	view := views[0]

	observability.IncChatMessage()
	if s.notifier != nil {
		s.notifier.NotifyNewMessage(chat, view)
	}
	publishDomainEvent(ctx, "chat.message_created", map[string]interface{}{
		"chat_id":    chat.ID,
		"message_id": msg.ID,
		"sender_id":  senderID,
	})
	return view, nil
}

// GetMessages returns a chat's history in creation order for one of its participants.
func (s *ChatService) GetMessages(ctx context.Context, chatID int, userID int) ([]models.MessageView, error) {
	if chatID <= 0 {
		return nil, apperror.ValidationFailed("chatId", "Chat ID is required")
	}
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListChatMessages(ctx, chatID)
	if err != nil {
		return nil, apperror.Internal("list messages", err)
	}
	return s.messageViews(ctx, msgs)
}

// IsParticipant reports whether userID belongs to chatID; the relay uses it to gate joins.
func (s *ChatService) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	return s.chats.IsParticipant(ctx, chatID, userID)
}

func (s *ChatService) participantChat(ctx context.Context, chatID int, userID int) (models.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if errors.Is(err, repositories.ErrChatNotFound) {
		return models.Chat{}, apperror.NotFound("Chat not found")
	}
	if err != nil {
		return models.Chat{}, apperror.Internal("get chat", err)
	}
	if !chat.HasParticipant(userID) {
		return models.Chat{}, apperror.Forbidden("Not a chat participant")
	}
	return chat, nil
}

// expand attaches the requested relations with one user lookup and one message lookup.
func (s *ChatService) expand(ctx context.Context, chats []models.Chat, with ChatRelations) ([]models.ChatView, error) {
	latest := map[int]models.Message{}
	if with.LatestMessage {
		ids := make([]int, 0, len(chats))
		for _, c := range chats {
			if c.LatestMessageID != nil {
				ids = append(ids, *c.LatestMessageID)
			}
		}
		msgs, err := s.messages.GetMessagesByIDs(ctx, ids)
		if err != nil {
			return nil, apperror.Internal("load latest messages", err)
		}
		for _, m := range msgs {
			latest[m.ID] = m
		}
	}

	userIDs := []int{}
	if with.Participants {
		for _, c := range chats {
			userIDs = append(userIDs, c.Participants()...)
		}
	}
	for _, m := range latest {
		userIDs = append(userIDs, m.SenderID)
	}
	users, err := lookupUsers(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ChatView, 0, len(chats))
	for _, c := range chats {
		view := models.ChatView{ID: c.ID, Participants: []models.PublicUser{}, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
		if with.Participants {
			for _, id := range c.Participants() {
				if u, ok := users[id]; ok {
					view.Participants = append(view.Participants, *u)
				}
			}
		}
		if c.LatestMessageID != nil {
			if m, ok := latest[*c.LatestMessageID]; ok {
				view.LatestMessage = &models.MessageView{Message: m, Sender: users[m.SenderID]}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ChatService) messageViews(ctx context.Context, msgs []models.Message) ([]models.MessageView, error) {
	senderIDs := make([]int, 0, len(msgs))
	for _, m := range msgs {
		senderIDs = append(senderIDs, m.SenderID)
	}
	users, err := lookupUsers(ctx, s.users, senderIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, models.MessageView{Message: m, Sender: users[m.SenderID]})
	}
	return views, nil
}
