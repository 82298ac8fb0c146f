package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultChannelPrefix = "notifications"

// RedisNotifier publishes messages as JSON on the channel "<prefix>:<userId>"
type RedisNotifier struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	logger     *zap.Logger
	now        func() time.Time
}

// NewRedisNotifier connects to redis and verifies the connection
func NewRedisNotifier(cfg config.RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n := NewRedisNotifierWithClient(client, cfg.ChannelPrefix, logger)
	n.ownsClient = true
	return n, nil
}

// NewRedisNotifierWithClient wraps an existing client. The caller keeps ownership of it.
func NewRedisNotifierWithClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisNotifier {
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{
		client: client,
		prefix: prefix,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Channel returns the pub/sub channel for a user
func (n *RedisNotifier) Channel(userID uuid.UUID) string {
	return n.prefix + ":" + userID.String()
}

// Notify publishes the message
func (n *RedisNotifier) Notify(ctx context.Context, userID uuid.UUID, kind, title, message string, progress map[string]any) error {
	data, err := json.Marshal(Message{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Progress:  progress,
		Timestamp: n.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := n.Channel(userID)
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		n.logger.Error("Failed to publish notification",
			zap.String("channel", channel),
			zap.String("kind", kind),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("Published notification",
		zap.String("channel", channel),
		zap.String("kind", kind))
	return nil
}

// Close releases the client when the notifier created it
func (n *RedisNotifier) Close() error {
	if !n.ownsClient {
		return nil
	}
	return n.client.Close()
}
