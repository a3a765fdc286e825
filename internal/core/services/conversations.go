package services

import (
	"bytes"
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

var tracer = otel.Tracer("socialmed-services")

type IConversationService interface {
	// ListConversations derives the conversation list for the session user,
	// newest last message first. Pure read, no side effects.
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	// ListNotifications returns the newest incoming messages for the
	// session user, redacted per the visibility policy.
	ListNotifications(ctx context.Context) ([]domain.Message, error)
}

type ConversationService struct {
	log      *slog.Logger
	messages domain.MessageRepository
	users    domain.UserRepository
}

func NewConversationService(
	log *slog.Logger,
	messages domain.MessageRepository,
	users domain.UserRepository,
) *ConversationService {
	return &ConversationService{
		log:      log,
		messages: messages,
		users:    users,
	}
}

// newerThan reports whether a should displace b as the conversation preview.
// Identical timestamps are broken by the greater message id, so the preview
// is deterministic regardless of fetch order.
func newerThan(a, b domain.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

// BuildIndex projects raw message rows into the conversation list for
// currentUserID: one entry per counterpart, preview = newest message of the
// pair, unread = any message addressed to the user still lacking read_at.
// The projection is pure so it can be exercised without a store.
func BuildIndex(msgs []domain.Message, currentUserID string) []domain.Conversation {
	latest := make(map[string]domain.Message)
	unread := make(map[string]bool)
	for _, m := range msgs {
		if m.SenderID != currentUserID && m.ReceiverID != currentUserID {
			continue
		}
		other := m.Counterpart(currentUserID)
		if best, ok := latest[other]; !ok || newerThan(m, best) {
			latest[other] = m
		}
		if m.Unread(currentUserID) {
			unread[other] = true
		}
	}
	out := make([]domain.Conversation, 0, len(latest))
	for other, m := range latest {
		out = append(out, domain.Conversation{
			OtherUserID:   other,
			LastMessage:   m.Body,
			LastMessageAt: m.CreatedAt,
			Unread:        unread[other],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].OtherUserID < out[j].OtherUserID
	})
	return out
}

func (s *ConversationService) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "ConversationService.ListConversations", trace.WithAttributes(
		attribute.String("user_id", sess.UserID),
	))
	defer span.End()

	msgs, err := s.messages.ListForUser(ctx, sess.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "message fetch failed")
		s.log.ErrorContext(ctx, "conversations - list - message fetch failed", "user_id", sess.UserID, "err", err)
		return nil, domain.Remote(err)
	}
	convs := BuildIndex(msgs, sess.UserID)

	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.OtherUserID
	}
	profiles, err := s.users.GetUsersByID(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile fetch failed")
		s.log.ErrorContext(ctx, "conversations - list - profile fetch failed", "user_id", sess.UserID, "err", err)
		return nil, domain.Remote(err)
	}
	for i := range convs {
		if u, ok := profiles[convs[i].OtherUserID]; ok {
			convs[i].OtherUsername = u.Username
			convs[i].AvatarURL = u.AvatarURL
		}
	}
	span.SetAttributes(attribute.Int("conversation_count", len(convs)))
	s.log.InfoContext(ctx, "conversations - list - success", "user_id", sess.UserID, "count", len(convs))
	return convs, nil
}

func (s *ConversationService) ListNotifications(ctx context.Context) ([]domain.Message, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "ConversationService.ListNotifications", trace.WithAttributes(
		attribute.String("user_id", sess.UserID),
	))
	defer span.End()

	msgs, err := s.messages.ListIncoming(ctx, sess.UserID, 50)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "incoming fetch failed")
		s.log.ErrorContext(ctx, "conversations - notifications - fetch failed", "user_id", sess.UserID, "err", err)
		return nil, domain.Remote(err)
	}
	return RedactAll(msgs, sess.UserID), nil
}
