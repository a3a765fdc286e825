package domain

import "time"

const (
	TypeMessage = "message"
	TypeRead    = "read"
	TypeBadge   = "badge"
	TypeError   = "error"
)

// MessageEvent is pushed to an open conversation socket when a new row
// arrives. The body is already passed through the visibility policy.
type MessageEvent struct {
	Type    string  `json:"type"` // "message"
	Message Message `json:"message"`
}

// ReadEvent tells the sender that the counterpart revealed their messages.
type ReadEvent struct {
	Type   string    `json:"type"` // "read"
	PeerID string    `json:"peer_id"`
	Count  int64     `json:"count"`
	At     time.Time `json:"at"`
}

// BadgeEvent carries recomputed unread counts, grouped by sender.
type BadgeEvent struct {
	Type   string           `json:"type"` // "badge"
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// ErrorMessage is a socket-safe error frame.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}
