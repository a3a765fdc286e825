package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderUnspecified Gender = "unspecified"
)

// User represents a registered account. PasswordHash is empty for accounts
// created through an external identity provider.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Age          *int
	Gender       Gender
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(email, username string) *User {
	now := time.Now()
	return &User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		Gender:    GenderUnspecified,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfilePatch carries the optional onboarding fields. Nil means "leave as is".
type ProfilePatch struct {
	Username  *string
	Age       *int
	Gender    *Gender
	AvatarURL *string
}

// Message is a direct message between two users. ReadAt is nil until the
// receiver marks it read; that transition happens at most once and only the
// receiver may cause it. Locked is a presentation flag set by the visibility
// policy, never stored.
type Message struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
	Locked     bool       `json:"locked,omitempty"`
}

func NewMessage(senderID, receiverID, body string) *Message {
	return &Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  time.Now(),
	}
}

// Unread reports whether the message still counts as unread for viewerID.
func (m Message) Unread(viewerID string) bool {
	return m.ReceiverID == viewerID && m.ReadAt == nil
}

// Between reports whether the message belongs to the {a, b} pair.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) ||
		(m.SenderID == b && m.ReceiverID == a)
}

// Counterpart returns the other party relative to userID.
func (m Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation is a derived view over the message table, keyed by the
// counterpart. It is recomputed on demand and never persisted.
type Conversation struct {
	OtherUserID   string    `json:"other_user_id"`
	OtherUsername string    `json:"other_username"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_time"`
	Unread        bool      `json:"unread"`
}

// Session is the authenticated identity resolved from an access token. It is
// passed explicitly through context, never held in package state.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	TokenID   string    `json:"token_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ExternalIdentity is what an OAuth provider asserts about a user.
type ExternalIdentity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}
