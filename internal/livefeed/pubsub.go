package livefeed

import (
	"context"
	"encoding/json"
	"modflow/backend/internal/metrics"
	"modflow/backend/internal/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher announces decisions on a Redis channel so that every server
// instance, not just the one that committed, can relay them.
type RedisPublisher struct {
	Redis   *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{Redis: rdb, Channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, entry *models.ModerationLogEntry) error {
	payload, err := json.Marshal(NewDecision(entry))
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return errors.Wrap(err, "encode feed event")
	}
	if err := p.Redis.Publish(ctx, p.Channel, payload).Err(); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return errors.Wrapf(err, "publish to %s", p.Channel)
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Subscribe relays events from the Redis channel into hub until ctx is done.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string, hub *Hub) error {
	pubsub := rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrapf(err, "subscribe to %s", channel)
	}
	hub.log.Info().Str("channel", channel).Msg("relaying live feed from redis")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := decodeEvent(msg.Payload)
			if err != nil {
				hub.log.Warn().Err(err).Msg("skipping malformed feed event")
				continue
			}
			if err := hub.Broadcast(ctx, evt); err != nil {
				return nil
			}
		}
	}
}

func decodeEvent(payload string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return Event{}, errors.Wrap(err, "decode feed event")
	}
	if evt.Type == "" || evt.Entry == nil {
		return Event{}, errors.New("feed event without type or entry")
	}
	return evt, nil
}
