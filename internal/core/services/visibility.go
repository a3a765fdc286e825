package services

import "github.com/joakmannn/SocialMed/internal/core/domain"

// LockedPlaceholder replaces the body of unread incoming messages until the
// viewer reveals them.
const LockedPlaceholder = "tap to reveal"

// Redact masks the body of a message that the viewer has not read yet.
// Messages sent by the viewer are never masked. The function is pure: it
// never mutates its input or the read timestamp (revealing is the receipt
// committer's job, so a fetch or render can never mark anything read).
func Redact(m domain.Message, viewerID string) domain.Message {
	if m.ReceiverID != viewerID || m.ReadAt != nil {
		return m
	}
	m.Body = LockedPlaceholder
	m.Locked = true
	return m
}

// RedactAll applies Redact to a copy of msgs.
func RedactAll(msgs []domain.Message, viewerID string) []domain.Message {
	out := make([]domain.Message, len(msgs))
	for i, m := range msgs {
		out[i] = Redact(m, viewerID)
	}
	return out
}
