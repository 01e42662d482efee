package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"devhub/internal/models"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrSelfChat     = errors.New("cannot create chat with self")
)

const chatColumns = `id, user1_id, user2_id, latest_message_id, created_at, updated_at`

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateOrGetChat(ctx context.Context, userID int, friendID int) (models.Chat, bool, error)
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	ListChats(ctx context.Context, userID int) ([]models.Chat, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateOrGetChat returns the chat between two users, creating it when absent.
// The pair is normalized (smaller id first) and guarded by a unique key, so two
// participants racing to open the same chat end up with one row. The bool reports
// whether this call created it.
func (r *ChatRepo) CreateOrGetChat(ctx context.Context, userID int, friendID int) (models.Chat, bool, error) {
	if userID == friendID {
		return models.Chat{}, false, ErrSelfChat
	}
	user1, user2 := userID, friendID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	var chat models.Chat
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chats (user1_id, user2_id) VALUES ($1, $2)
        ON CONFLICT (user1_id, user2_id) DO NOTHING RETURNING `+chatColumns, user1, user2).
		StructScan(&chat)
	if err == nil {
		return chat, true, nil
	}
	if isForeignKeyViolation(err) {
		return models.Chat{}, false, ErrUserNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, false, err
	}

	if err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE user1_id=$1 AND user2_id=$2`, user1, user2); err != nil {
		return models.Chat{}, false, err
	}
	return chat, false, nil
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chats WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`, chatID, userID)
	return exists, err
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// ListChats returns the user's chats, most recently updated first.
func (r *ChatRepo) ListChats(ctx context.Context, userID int) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.SelectContext(ctx, &chats, `SELECT `+chatColumns+` FROM chats
        WHERE user1_id=$1 OR user2_id=$1
        ORDER BY updated_at DESC, id DESC`, userID)
	return chats, err
}
