package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/infra/logger"
)

// RedisConfig defines the connection parameters for the Redis sink.
type RedisConfig struct {
	Addr          string `json:"addr" yaml:"addr"`
	Password      string `json:"password" yaml:"password"`
	DB            int    `json:"db" yaml:"db"`
	ChannelPrefix string `json:"channel_prefix" yaml:"channel_prefix"`
}

// RedisSink publishes notifications on per-channel Redis pub/sub channels,
// which the dispatch dashboard subscribes to.
type RedisSink struct {
	rdb    *redis.Client
	prefix string
	log    logger.Logger
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = "fleetopt:notifications"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("notify: redis ping: %w", err)
	}
	return &RedisSink{rdb: rdb, prefix: cfg.ChannelPrefix, log: logger.New("redis-notify")}, nil
}

type redisMessage struct {
	Channel string            `json:"channel"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
	SentAt  int64             `json:"sent_at"`
}

// Notify publishes the message on <prefix>:<channel>.
func (s *RedisSink) Notify(ctx context.Context, ch fleet.Channel, message string, meta map[string]string) error {
	payload, err := json.Marshal(redisMessage{
		Channel: string(ch),
		Message: message,
		Meta:    meta,
		SentAt:  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("%s:%s", s.prefix, ch)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("notify: redis publish to %s: %w", channel, err)
	}
	s.log.Debugf("published notification to %s", channel)
	return nil
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
