package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

type IReceiptService interface {
	// MarkRead reveals every unread message from otherUserID to the session
	// user and returns how many transitioned. Idempotent: a second call with
	// nothing newly unread returns zero and no error.
	MarkRead(ctx context.Context, otherUserID string) (int64, error)
	// MarkMessageRead reveals a single message (notification tap).
	MarkMessageRead(ctx context.Context, messageID uuid.UUID) (int64, error)
}

type ReceiptService struct {
	log      *slog.Logger
	repo     domain.MessageRepository
	badges   contracts.BadgeCache
	registry contracts.Registry
	tx       contracts.TxManager
}

func NewReceiptService(
	log *slog.Logger,
	repo domain.MessageRepository,
	badges contracts.BadgeCache,
	registry contracts.Registry,
	tx contracts.TxManager,
) *ReceiptService {
	return &ReceiptService{
		log:      log,
		repo:     repo,
		badges:   badges,
		registry: registry,
		tx:       tx,
	}
}

func (s *ReceiptService) MarkRead(ctx context.Context, otherUserID string) (int64, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return 0, err
	}
	if otherUserID == "" || otherUserID == sess.UserID {
		return 0, domain.ErrInvalidUserID
	}
	ctx, span := tracer.Start(ctx, "ReceiptService.MarkRead", trace.WithAttributes(
		attribute.String("user_id", sess.UserID),
		attribute.String("peer_id", otherUserID),
	))
	defer span.End()

	var count int64
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		count, txErr = s.repo.MarkRead(txCtx, sess.UserID, otherUserID)
		return txErr
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark read failed")
		s.log.ErrorContext(ctx, "receipts - mark read failed", "user_id", sess.UserID, "peer_id", otherUserID, "err", err)
		// Failed commit leaves no local state behind; the badge cache still
		// reflects the store.
		return 0, domain.Remote(err)
	}
	span.SetAttributes(attribute.Int64("transitioned", count))
	if count > 0 {
		s.afterCommit(ctx, sess.UserID, otherUserID, count)
	}
	s.log.InfoContext(ctx, "receipts - mark read success", "user_id", sess.UserID, "peer_id", otherUserID, "count", count)
	return count, nil
}

func (s *ReceiptService) MarkMessageRead(ctx context.Context, messageID uuid.UUID) (int64, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return 0, err
	}
	ctx, span := tracer.Start(ctx, "ReceiptService.MarkMessageRead", trace.WithAttributes(
		attribute.String("user_id", sess.UserID),
		attribute.String("message_id", messageID.String()),
	))
	defer span.End()

	var count int64
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		count, txErr = s.repo.MarkReadByID(txCtx, sess.UserID, messageID)
		return txErr
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark read failed")
		s.log.ErrorContext(ctx, "receipts - mark message read failed", "user_id", sess.UserID, "message_id", messageID.String(), "err", err)
		return 0, domain.Remote(err)
	}
	if count > 0 {
		if err := s.badges.Invalidate(ctx, sess.UserID); err != nil {
			s.log.ErrorContext(ctx, "receipts - badge invalidate failed", "user_id", sess.UserID, "err", err)
		}
	}
	return count, nil
}

// afterCommit invalidates the derived badge cache and notifies the sender's
// open screens that their messages were revealed.
func (s *ReceiptService) afterCommit(ctx context.Context, userID, otherUserID string, count int64) {
	if err := s.badges.Invalidate(ctx, userID); err != nil {
		s.log.ErrorContext(ctx, "receipts - badge invalidate failed", "user_id", userID, "err", err)
	}
	s.registry.SendToUser(ctx, otherUserID, domain.ReadEvent{
		Type:   domain.TypeRead,
		PeerID: userID,
		Count:  count,
		At:     time.Now(),
	})
}
