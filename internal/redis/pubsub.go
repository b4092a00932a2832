package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventsPubSub announces event mutations so feed and calendar clients can
// refresh without polling. Removals are announced with type "event_removed",
// everything else with "event_changed".
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelEventsChanged(),
	}
}

type eventChangedMsg struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *EventsPubSub) PublishEventChanged(ctx context.Context, eventID uuid.UUID) error {
	return p.publish(ctx, "event_changed", eventID.String())
}

func (p *EventsPubSub) PublishEventRemoved(ctx context.Context, eventID uuid.UUID) error {
	return p.publish(ctx, "event_removed", eventID.String())
}

func (p *EventsPubSub) publish(ctx context.Context, typ, eventID string) error {
	msg := eventChangedMsg{
		Type:    typ,
		EventID: eventID,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *EventsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, typ, eventID string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev eventChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.EventID != "" {
				handler(ctx, ev.Type, ev.EventID)
			}
		}
	}
}
