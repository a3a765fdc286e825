package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

/*
	CREATE TABLE private_messages (
		id          UUID PRIMARY KEY,
		sender_id   TEXT NOT NULL REFERENCES users(id),
		receiver_id TEXT NOT NULL REFERENCES users(id),
		body        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		read_at     TIMESTAMPTZ,
		CHECK (sender_id <> receiver_id)
	);
	CREATE INDEX idx_pm_receiver ON private_messages (receiver_id, read_at);
	CREATE INDEX idx_pm_pair ON private_messages (sender_id, receiver_id, created_at DESC);
*/

const messageColumns = `id, sender_id, receiver_id, body, created_at, read_at`

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Body,
			&m.CreatedAt,
			&m.ReadAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) ListBetween(ctx context.Context, userID, otherID string) ([]domain.Message, error) {
	if userID == "" || otherID == "" {
		return nil, domain.ErrInvalidUserID
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM private_messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC, id ASC
	`, userID, otherID)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (r *MessageRepo) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM private_messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (r *MessageRepo) ListIncoming(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM private_messages
		WHERE receiver_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	if m.SenderID == m.ReceiverID {
		return domain.ErrSelfConversation
	}
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO private_messages (id, sender_id, receiver_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt)
	return err
}

func (r *MessageRepo) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	if receiverID == "" || senderID == "" {
		return 0, domain.ErrInvalidUserID
	}
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		UPDATE private_messages
		SET read_at = now()
		WHERE receiver_id = $1 AND sender_id = $2 AND read_at IS NULL
	`, receiverID, senderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MessageRepo) MarkReadByID(ctx context.Context, receiverID string, id uuid.UUID) (int64, error) {
	exec := GetExecutor(ctx, r.db)
	// Guarded by receiver identity: only the receiver transitions read_at.
	result, err := exec.ExecContext(ctx, `
		UPDATE private_messages
		SET read_at = now()
		WHERE id = $1 AND receiver_id = $2 AND read_at IS NULL
	`, id, receiverID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MessageRepo) CountUnread(ctx context.Context, receiverID string) (map[string]int64, error) {
	if receiverID == "" {
		return nil, domain.ErrInvalidUserID
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT sender_id, count(*)
		FROM private_messages
		WHERE receiver_id = $1 AND read_at IS NULL
		GROUP BY sender_id
	`, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var sender string
		var n int64
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, err
		}
		counts[sender] = n
	}
	return counts, rows.Err()
}
