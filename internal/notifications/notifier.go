// Package notifications provides real-time event delivery over Redis pub/sub
// and websockets.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"chelagram/internal/models"

	"github.com/redis/go-redis/v9"
)

// Event types pushed to websocket clients.
const (
	EventMessageNew          = "message_new"
	EventConversationUpdated = "conversation_updated"
)

// Event is the payload published on a user channel and forwarded to that
// user's websocket connections.
type Event struct {
	Type           string          `json:"type"`
	ConversationID uint            `json:"conversation_id,omitempty"`
	Message        *models.Message `json:"message,omitempty"`
}

// Notifier provides helpers to publish events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartUserSubscriber subscribes to the `events:user:*` pattern and calls
// onMessage for each incoming message.
func (n *Notifier) StartUserSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "events:user:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in user subscriber", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "events:user:" + strconv.FormatUint(uint64(userID), 10)
}

// UserIDFromChannel parses the user id back out of a channel name. Returns 0
// for channels that are not user channels.
func UserIDFromChannel(channel string) uint {
	const prefix = "events:user:"
	if len(channel) <= len(prefix) || channel[:len(prefix)] != prefix {
		return 0
	}
	id, err := strconv.ParseUint(channel[len(prefix):], 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
