package services

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

// ConversationSession is the synchronized, newest-first view of one open
// conversation. It owns a change-feed subscription and keeps the in-memory
// sequence correct under out-of-order and duplicate delivery.
type ConversationSession struct {
	svc     *MessageService
	userID  string
	otherID string

	mu   sync.Mutex
	msgs []domain.Message // raw bodies; redaction happens on the way out
	seen map[uuid.UUID]struct{}

	updates chan domain.Message
	sub     contracts.Subscription
	closing sync.Once
}

func newConversationSession(
	svc *MessageService,
	userID, otherID string,
	initial []domain.Message,
	sub contracts.Subscription,
) *ConversationSession {
	s := &ConversationSession{
		svc:     svc,
		userID:  userID,
		otherID: otherID,
		msgs:    initial,
		seen:    make(map[uuid.UUID]struct{}, len(initial)),
		updates: make(chan domain.Message, 64),
		sub:     sub,
	}
	for _, m := range initial {
		s.seen[m.ID] = struct{}{}
	}
	go s.pump()
	return s
}

// displayBefore orders the sequence newest first; identical timestamps fall
// back to ascending id so the order is stable across refetches.
func displayBefore(a, b domain.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// pump consumes feed events until the subscription closes. The feed channel
// is table-wide, so events are re-filtered to this exact pair; delivery
// order is untrusted and each row is re-inserted by timestamp.
func (s *ConversationSession) pump() {
	defer close(s.updates)
	for m := range s.sub.Events() {
		if !m.Between(s.userID, s.otherID) {
			continue
		}
		if !s.insert(m) {
			continue // duplicate delivery
		}
		select {
		case s.updates <- Redact(m, s.userID):
		default:
			s.svc.log.Warn("messages - sync - update dropped, consumer too slow",
				"user_id", s.userID, "peer_id", s.otherID, "message_id", m.ID.String())
		}
	}
}

// insert places m at its sorted position and reports whether it was new.
// The common case, a new maximum, is a prepend without re-sorting.
func (s *ConversationSession) insert(m domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[m.ID]; dup {
		return false
	}
	s.seen[m.ID] = struct{}{}
	if len(s.msgs) == 0 || displayBefore(m, s.msgs[0]) {
		s.msgs = append([]domain.Message{m}, s.msgs...)
		return true
	}
	idx := sort.Search(len(s.msgs), func(i int) bool {
		return displayBefore(m, s.msgs[i])
	})
	s.msgs = append(s.msgs, domain.Message{})
	copy(s.msgs[idx+1:], s.msgs[idx:])
	s.msgs[idx] = m
	return true
}

// Messages returns a redacted snapshot of the current sequence.
func (s *ConversationSession) Messages() []domain.Message {
	s.mu.Lock()
	raw := make([]domain.Message, len(s.msgs))
	copy(raw, s.msgs)
	s.mu.Unlock()
	return RedactAll(raw, s.userID)
}

// Updates yields redacted messages as they arrive. The channel closes when
// the session is closed.
func (s *ConversationSession) Updates() <-chan domain.Message {
	return s.updates
}

// Send validates and persists a message to the counterpart, then appends it
// locally. The local append happens only after the insert is acknowledged.
func (s *ConversationSession) Send(ctx context.Context, body string) (*domain.Message, error) {
	msg, err := s.svc.Send(ctx, s.otherID, body)
	if err != nil {
		return nil, err
	}
	s.insert(*msg)
	return msg, nil
}

// Close releases the subscription. Closing twice is a no-op.
func (s *ConversationSession) Close() {
	s.closing.Do(func() {
		s.sub.Close()
	})
}
