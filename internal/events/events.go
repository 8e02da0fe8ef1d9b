// Package events publishes emoji change notifications to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naija-emoji/apiserver/internal/mq"
)

// Type names the kind of change an Event reports.
type Type string

const (
	EmojiCreated Type = "emoji.created"
	EmojiUpdated Type = "emoji.updated"
	EmojiDeleted Type = "emoji.deleted"
)

const attrType = "type"

// Event describes a change to an emoji record.
type Event struct {
	Type       Type      `json:"type"`
	EmojiID    int       `json:"emoji_id"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// BrokerPublisher encodes events as JSON and sends them to a single channel.
type BrokerPublisher struct {
	queue   *mq.MQ
	channel string
}

func NewBrokerPublisher(queue *mq.MQ, channel string) *BrokerPublisher {
	return &BrokerPublisher{queue: queue, channel: channel}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		attrType:           string(event.Type),
		mq.AttrContentType: "application/json",
	}
	if _, err := p.queue.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Subscribe decodes events from the channel and passes them to handle.
// Messages that are not valid events are acknowledged and skipped.
func Subscribe(ctx context.Context, queue *mq.MQ, channel string, handle func(context.Context, Event) error) error {
	return queue.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
		event, err := Decode(msg)
		if err != nil {
			return nil
		}
		return handle(ctx, event)
	})
}

// Decode parses the JSON payload of msg.
func Decode(msg mq.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("decode event %s: missing type", msg.ID)
	}
	return event, nil
}
