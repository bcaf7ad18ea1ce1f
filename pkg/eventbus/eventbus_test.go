package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmill/flowmill/pkg/channels/gochannel"
	"github.com/flowmill/flowmill/pkg/eventbus"
	"github.com/flowmill/flowmill/pkg/events"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)
	received := make(chan events.Event, 1)

	err := bus.Subscribe(ctx, func(_ context.Context, event events.Event) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	published := &events.WorkflowExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.WorkflowExecutionStartedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: "wf-1",
		},
		ExecutionID: "exec-abc",
	}
	require.NoError(t, bus.Publish(ctx, published))

	select {
	case event := <-received:
		started, ok := event.(*events.WorkflowExecutionStarted)
		require.True(t, ok)
		assert.Equal(t, "wf-1", started.WorkflowID)
		assert.Equal(t, "exec-abc", started.ExecutionID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_DecodesEachEventType(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)
	received := make(chan events.Event, 4)

	require.NoError(t, bus.Subscribe(ctx, func(_ context.Context, event events.Event) error {
		received <- event

		return nil
	}))

	published := []events.Event{
		&events.WorkflowExecutionCompleted{ExecutionID: "exec-1", DurationMS: 12},
		&events.WorkflowExecutionFailed{ExecutionID: "exec-2", Error: "boom"},
		&events.WorkflowEscalated{RecentErrors: 3, Window: 5},
	}
	for _, event := range published {
		require.NoError(t, bus.Publish(ctx, event))
	}

	var types []events.EventType

	for range published {
		select {
		case event := <-received:
			types = append(types, event.GetType())
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	assert.ElementsMatch(t, []events.EventType{
		events.WorkflowExecutionCompletedEvent,
		events.WorkflowExecutionFailedEvent,
		events.WorkflowEscalatedEvent,
	}, types)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
