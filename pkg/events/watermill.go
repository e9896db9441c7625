package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const MetadataEventType = "event_type"

// WatermillPublisher puts events on an in-process topic.
type WatermillPublisher struct {
	topic     string
	publisher message.Publisher
}

func NewWatermillPublisher(topic string, publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{topic: topic, publisher: publisher}
}

func (p *WatermillPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(ToEnvelope(event))
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventType, event.EventType())
	msg.SetContext(ctx)
	return p.publisher.Publish(p.topic, msg)
}

func DecodeMessage(msg *message.Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return env, nil
}
