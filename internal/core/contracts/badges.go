package contracts

import "context"

// BadgeCache holds the per-sender unread counts for a user. The cache is
// strictly derived: it is rewritten by the badge worker and invalidated on
// every read-receipt commit, never patched incrementally.
type BadgeCache interface {
	SetCounts(ctx context.Context, userID string, counts map[string]int64) error
	GetCounts(ctx context.Context, userID string) (map[string]int64, error)
	Invalidate(ctx context.Context, userID string) error
}
