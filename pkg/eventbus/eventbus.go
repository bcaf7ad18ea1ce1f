// Package eventbus publishes workflow lifecycle events over watermill.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/flowmill/flowmill/pkg/events"
)

const eventTypeMetadataKey = "event_type"

type EventHandler func(ctx context.Context, event events.Event) error

// EventBus is the lifecycle event transport consumed by the engine and the
// notification sink.
type EventBus interface {
	Publish(ctx context.Context, event events.Event) error
	Subscribe(ctx context.Context, handler EventHandler) error
	Close() error
	GenerateID() string
}

// WatermillEventBus carries events on a watermill publisher/subscriber pair
// (gochannel in development, kafka in production).
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.GetType(), err)
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(eventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

// Subscribe consumes the event topic, decoding each message by its type
// metadata. Unknown types are acked and skipped.
func (eb *WatermillEventBus) Subscribe(ctx context.Context, handler EventHandler) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.Topic, err)
	}

	go func() {
		for msg := range messages {
			event, err := decode(msg)
			if err != nil {
				msg.Nack()

				continue
			}

			if event == nil {
				msg.Ack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func decode(msg *message.Message) (events.Event, error) {
	var event events.Event

	switch events.EventType(msg.Metadata.Get(eventTypeMetadataKey)) {
	case events.WorkflowExecutionStartedEvent:
		event = &events.WorkflowExecutionStarted{}
	case events.WorkflowExecutionCompletedEvent:
		event = &events.WorkflowExecutionCompleted{}
	case events.WorkflowExecutionFailedEvent:
		event = &events.WorkflowExecutionFailed{}
	case events.WorkflowEscalatedEvent:
		event = &events.WorkflowEscalated{}
	case events.EmailRequestedEvent:
		event = &events.EmailRequested{}
	case events.LogRecordEvent:
		event = &events.LogRecord{}
	default:
		return nil, nil
	}

	if err := json.Unmarshal(msg.Payload, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s event: %w",
			msg.Metadata.Get(eventTypeMetadataKey), err)
	}

	return event, nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
