package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
	"github.com/joakmannn/SocialMed/pkg/logging"
)

// changeChannel is table-wide on purpose: subscribers re-filter to their own
// conversation, mirroring a store whose notification scope is coarser than
// one conversation.
const changeChannel = "changes:private_messages"

type RedisChangeFeed struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisChangeFeed(rdb *redis.Client, log *slog.Logger) *RedisChangeFeed {
	return &RedisChangeFeed{rdb: rdb, log: log}
}

func (f *RedisChangeFeed) Publish(ctx context.Context, msg domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, changeChannel, raw).Err()
}

func (f *RedisChangeFeed) Subscribe(ctx context.Context) (contracts.Subscription, error) {
	pubsub := f.rdb.Subscribe(ctx, changeChannel)
	// Force the subscribe round-trip so a failing broker surfaces here, not
	// as a silently empty stream.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan domain.Message, 64),
	}
	go sub.decode(f.log)
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan domain.Message
	once   sync.Once
}

func (s *redisSubscription) decode(log *slog.Logger) {
	defer close(s.events)
	for raw := range s.pubsub.Channel() {
		var m domain.Message
		if err := json.Unmarshal([]byte(raw.Payload), &m); err != nil {
			log.Warn("changefeed - undecodable event dropped", logging.Err(err))
			continue
		}
		s.events <- m
	}
}

func (s *redisSubscription) Events() <-chan domain.Message {
	return s.events
}

func (s *redisSubscription) Close() {
	s.once.Do(func() {
		_ = s.pubsub.Close()
	})
}
