package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devhub/internal/models"
)

const messageColumns = `id, chat_id, sender_id, content, created_at`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateChatMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error)
	ListChatMessages(ctx context.Context, chatID int) ([]models.Message, error)
	GetMessagesByIDs(ctx context.Context, ids []int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateChatMessage stores a message and points the chat's latest message at it in
// the same transaction, so neither is ever visible without the other.
func (r *MessageRepo) CreateChatMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	if err := tx.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3) RETURNING `+messageColumns,
		chatID, senderID, content).StructScan(&msg); err != nil {
		if isForeignKeyViolation(err) {
			return models.Message{}, ErrChatNotFound
		}
		return models.Message{}, err
	}

	res, err := tx.ExecContext(ctx, `UPDATE chats SET latest_message_id=$2, updated_at=$3 WHERE id=$1`, chatID, msg.ID, msg.CreatedAt)
	if err != nil {
		return models.Message{}, err
	}
	if count, err := res.RowsAffected(); err != nil {
		return models.Message{}, err
	} else if count == 0 {
		return models.Message{}, ErrChatNotFound
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListChatMessages returns the chat's messages in creation order.
func (r *MessageRepo) ListChatMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY created_at ASC, id ASC`, chatID)
	return msgs, err
}

// GetMessagesByIDs fetches messages by id. Order is unspecified.
func (r *MessageRepo) GetMessagesByIDs(ctx context.Context, ids []int) ([]models.Message, error) {
	if len(ids) == 0 {
		return []models.Message{}, nil
	}
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE id = ANY($1)`, pq.Array(ids))
	return msgs, err
}
