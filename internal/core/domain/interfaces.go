package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository handles account identity and onboarding profile fields.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUsersByID resolves a batch of counterpart profiles for the
	// conversation index. Unknown ids are simply absent from the result.
	GetUsersByID(ctx context.Context, ids []string) (map[string]*User, error)
	CreateUser(ctx context.Context, u *User) error
	// UpsertExternal creates or refreshes an account asserted by an OAuth
	// provider, keyed by email.
	UpsertExternal(ctx context.Context, u *User) (*User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error
}

// MessageRepository handles the message table. The store is the source of
// truth; local copies are caches with no write-back beyond these operations.
type MessageRepository interface {
	// ListBetween returns every message of the {userID, otherID} pair,
	// created_at descending, ties broken by id ascending.
	ListBetween(ctx context.Context, userID, otherID string) ([]Message, error)
	// ListForUser returns every message where userID is sender or receiver.
	ListForUser(ctx context.Context, userID string) ([]Message, error)
	// ListIncoming returns the newest messages addressed to userID.
	ListIncoming(ctx context.Context, userID string, limit int) ([]Message, error)
	Insert(ctx context.Context, m *Message) error
	// MarkRead stamps read_at on every unread message from senderID to
	// receiverID and returns how many rows transitioned.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
	// MarkReadByID stamps a single message, guarded by receiver identity.
	MarkReadByID(ctx context.Context, receiverID string, id uuid.UUID) (int64, error)
	// CountUnread returns unread counts for receiverID grouped by sender.
	CountUnread(ctx context.Context, receiverID string) (map[string]int64, error)
}
