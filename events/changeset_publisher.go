package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChangesetEvent announces a committed changeset.
type ChangesetEvent struct {
	EventID     string         `json:"event_id"`
	ChangesetID uint           `json:"changeset_id"`
	NodeID      uint           `json:"node_id"`
	UserID      *uint          `json:"user_id,omitempty"`
	ItemID      uint           `json:"item_id"`
	ItemType    string         `json:"item_type"`
	Diff        map[string]any `json:"diff"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// ChangesetPublisher announces changesets after their transaction committed.
// Publishing is best effort; implementations log failures instead of returning them.
type ChangesetPublisher interface {
	PublishChangeset(ctx context.Context, event ChangesetEvent)
}

type NopPublisher struct{}

func (NopPublisher) PublishChangeset(context.Context, ChangesetEvent) {}

func ChangesetEventsChannel(prefix string) string {
	return prefix + ":changeset_events"
}

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisPublisher(rdb *redis.Client, prefix string, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		rdb:     rdb,
		channel: ChangesetEventsChannel(prefix),
		log:     log.With().Str("component", "changeset_publisher").Logger(),
	}
}

func (p *RedisPublisher) PublishChangeset(ctx context.Context, event ChangesetEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Uint("changeset_id", event.ChangesetID).Msg("marshal changeset event")
		return
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn().Err(err).
			Str("channel", p.channel).
			Uint("changeset_id", event.ChangesetID).
			Msg("publish changeset event")
		return
	}

	p.log.Debug().Str("event_id", event.EventID).Uint("changeset_id", event.ChangesetID).Msg("changeset event published")
}

// Subscribe streams changeset events until ctx is cancelled. Malformed
// messages are logged and skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context) (<-chan ChangesetEvent, error) {
	pubsub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", p.channel, err)
	}

	events := make(chan ChangesetEvent, 10)
	go func() {
		defer close(events)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ChangesetEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					p.log.Warn().Err(err).Msg("skip malformed changeset event")
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
