package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	// KindItemListed is emitted when a token is listed or its price updated.
	KindItemListed = "item_listed"
	// KindItemBought is emitted when a listed token is sold.
	KindItemBought = "item_bought"
	// KindItemCanceled is emitted when a listing is withdrawn by its seller.
	KindItemCanceled = "item_canceled"
)

// Event describes a marketplace notification payload. Seller is set for
// item_listed and item_canceled, Buyer for item_bought. Price is omitted on
// cancellation.
type Event struct {
	Kind       string `json:"kind"`
	Seller     string `json:"seller,omitempty"`
	Buyer      string `json:"buyer,omitempty"`
	NFTAddress string `json:"nft_address"`
	TokenID    uint64 `json:"token_id"`
	Price      int64  `json:"price,omitempty"`
}

// Notifier delivers marketplace events to downstream consumers (indexers,
// front-end caches). Consumers never drive marketplace logic.
type Notifier interface {
	Send(ctx context.Context, event Event) error
}

// LoggerNotifier writes events to the structured logger. Used when no broker
// is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the event to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, event Event) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("marketplace event",
		"kind", event.Kind,
		"seller", event.Seller,
		"buyer", event.Buyer,
		"nft_address", event.NFTAddress,
		"token_id", event.TokenID,
		"price", event.Price,
	)
	return nil
}

// RedisNotifier publishes events as JSON on a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier constructs a notifier publishing to the given channel.
func NewRedisNotifier(client *redis.Client, channel string, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Send marshals the event and publishes it. Publish failures are returned to
// the caller but never undo the operation that produced the event.
func (n *RedisNotifier) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		if n.logger != nil {
			n.logger.Warn("publish event", "kind", event.Kind, "error", err)
		}
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
