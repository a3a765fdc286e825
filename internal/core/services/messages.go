package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

type IMessageService interface {
	// OpenConversation returns the synchronized view of the conversation
	// with otherUserID: the initial message list plus a live subscription.
	OpenConversation(ctx context.Context, otherUserID string) (*ConversationSession, error)
	// Send inserts a message and, once the insert is acknowledged,
	// publishes it to the change feed and the event stream. No retry.
	Send(ctx context.Context, otherUserID, body string) (*domain.Message, error)
}

type MessageService struct {
	log   *slog.Logger
	repo  domain.MessageRepository
	feed  contracts.ChangeFeed
	queue contracts.EventQueue
	tx    contracts.TxManager
}

func NewMessageService(
	log *slog.Logger,
	repo domain.MessageRepository,
	feed contracts.ChangeFeed,
	queue contracts.EventQueue,
	tx contracts.TxManager,
) *MessageService {
	return &MessageService{
		log:   log,
		repo:  repo,
		feed:  feed,
		queue: queue,
		tx:    tx,
	}
}

func (s *MessageService) OpenConversation(ctx context.Context, otherUserID string) (*ConversationSession, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if otherUserID == "" || otherUserID == sess.UserID {
		return nil, domain.ErrInvalidUserID
	}
	ctx, span := tracer.Start(ctx, "MessageService.OpenConversation", trace.WithAttributes(
		attribute.String("user_id", sess.UserID),
		attribute.String("peer_id", otherUserID),
	))
	defer span.End()

	// Subscribe before the initial fetch so rows inserted in between are
	// not lost; the id-dedupe absorbs the overlap.
	sub, err := s.feed.Subscribe(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "subscribe failed")
		s.log.ErrorContext(ctx, "messages - open - subscribe failed", "user_id", sess.UserID, "peer_id", otherUserID, "err", err)
		return nil, domain.Remote(err)
	}
	initial, err := s.repo.ListBetween(ctx, sess.UserID, otherUserID)
	if err != nil {
		sub.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "initial fetch failed")
		s.log.ErrorContext(ctx, "messages - open - initial fetch failed", "user_id", sess.UserID, "peer_id", otherUserID, "err", err)
		return nil, domain.Remote(err)
	}
	span.SetAttributes(attribute.Int("message_count", len(initial)))
	s.log.InfoContext(ctx, "messages - open - success", "user_id", sess.UserID, "peer_id", otherUserID, "count", len(initial))
	return newConversationSession(s, sess.UserID, otherUserID, initial, sub), nil
}

func (s *MessageService) Send(ctx context.Context, otherUserID, body string) (*domain.Message, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &domain.SendError{Reason: "empty message body"}
	}
	if otherUserID == "" || otherUserID == sess.UserID {
		return nil, &domain.SendError{Reason: "invalid receiver", Err: domain.ErrSelfConversation}
	}
	ctx, span := tracer.Start(ctx, "MessageService.Send", trace.WithAttributes(
		attribute.String("user_id", sess.UserID),
		attribute.String("peer_id", otherUserID),
	))
	defer span.End()

	msg := domain.NewMessage(sess.UserID, otherUserID, body)
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Insert(txCtx, msg)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		s.log.ErrorContext(ctx, "messages - send - insert failed", "user_id", sess.UserID, "peer_id", otherUserID, "err", err)
		return nil, &domain.SendError{Reason: "rejected by store", Err: domain.Remote(err)}
	}

	// Post-commit fan-out. Failures here are logged, not surfaced: the
	// message is durable and subsequent fetches will see it.
	if err := s.feed.Publish(ctx, *msg); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "messages - send - feed publish failed", "message_id", msg.ID.String(), "err", err)
	}
	if raw, err := json.Marshal(msg); err == nil {
		if err := s.queue.PublishToStream(ctx, raw); err != nil {
			span.RecordError(err)
			s.log.ErrorContext(ctx, "messages - send - stream publish failed", "message_id", msg.ID.String(), "err", err)
		}
	}
	s.log.InfoContext(ctx, "messages - send - success", "message_id", msg.ID.String(), "user_id", sess.UserID, "peer_id", otherUserID)
	return msg, nil
}
