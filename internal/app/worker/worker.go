package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
	"github.com/joakmannn/SocialMed/pkg/logging"
)

// BadgeWorker keeps unread badge counts current. It consumes the committed
// message stream to recompute the receiver's counts as rows arrive, and a
// fixed-interval fallback poll refreshes every connected user in case a
// stream event was missed.
type BadgeWorker struct {
	log      *slog.Logger
	queue    contracts.EventQueue
	repo     domain.MessageRepository
	badges   contracts.BadgeCache
	registry contracts.Registry
	group    string
	interval time.Duration
}

func NewBadgeWorker(
	log *slog.Logger,
	queue contracts.EventQueue,
	repo domain.MessageRepository,
	badges contracts.BadgeCache,
	registry contracts.Registry,
	group string,
	interval time.Duration,
) *BadgeWorker {
	return &BadgeWorker{
		log:      log,
		queue:    queue,
		repo:     repo,
		badges:   badges,
		registry: registry,
		group:    group,
		interval: interval,
	}
}

func (w *BadgeWorker) Run(ctx context.Context) error {
	if err := w.queue.SubscribeToStream(ctx, w.group, w.ProcessEvent); err != nil {
		w.log.ErrorContext(ctx, "worker - subscribe to stream failed", "group", w.group, "err", err)
		return err
	}
	w.log.InfoContext(ctx, "worker - badge worker started", "group", w.group, "poll_interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker - badge worker stopped")
			return nil
		case <-ticker.C:
			for _, userID := range w.registry.ActiveUsers() {
				w.refresh(ctx, userID)
			}
		}
	}
}

// ProcessEvent recomputes the receiver's badge counts for one committed
// message. Duplicate stream delivery is harmless: the recompute is a full
// rewrite from the store, not an increment.
func (w *BadgeWorker) ProcessEvent(ctx context.Context, msgID string, raw []byte) error {
	var msg domain.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		w.log.Error("worker - process event - undecodable payload", "stream_id", msgID)
		return err
	}
	w.refresh(ctx, msg.ReceiverID)

	if err := w.queue.AcknowledgeMessage(ctx, w.group, msgID); err != nil {
		w.log.ErrorContext(ctx, "worker - process event - acknowledge failed", "stream_id", msgID, "err", err)
		return err
	}
	if err := w.queue.DeleteMessage(ctx, msgID); err != nil {
		// already processed and acked, trimming is best effort
		w.log.ErrorContext(ctx, "worker - process event - delete failed", "stream_id", msgID, "err", err)
	}
	return nil
}

func (w *BadgeWorker) refresh(ctx context.Context, userID string) {
	counts, err := w.repo.CountUnread(ctx, userID)
	if err != nil {
		w.log.ErrorContext(ctx, "worker - refresh - count unread failed", logging.User(userID), logging.Err(err))
		return
	}
	if err := w.badges.SetCounts(ctx, userID, counts); err != nil {
		w.log.ErrorContext(ctx, "worker - refresh - cache write failed", logging.User(userID), logging.Err(err))
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	w.registry.SendToUser(ctx, userID, domain.BadgeEvent{
		Type:   domain.TypeBadge,
		Counts: counts,
		Total:  total,
	})
}
