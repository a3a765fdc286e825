package contracts

import "context"

// Registry tracks the websocket connections of signed-in users so the badge
// worker and read-receipt committer can push events to whichever screens a
// user has open. A user may hold several connections at once.
type Registry interface {
	Register(c Client)
	Unregister(c Client)
	// SendToUser delivers v (JSON-encoded) to every connection of userID.
	SendToUser(ctx context.Context, userID string, v any)
	// ActiveUsers lists the user ids with at least one open connection.
	ActiveUsers() []string
}

// Client is the minimal surface the Registry needs from a connection.
type Client interface {
	UserID() string
	ConnID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
