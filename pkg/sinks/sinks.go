// Package sinks provides the default sink implementations: notifications and
// log records ride the event bus, metrics samples land in the metrics
// repository.
package sinks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowmill/flowmill/pkg/eventbus"
	"github.com/flowmill/flowmill/pkg/events"
	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/persistence"
	"github.com/flowmill/flowmill/pkg/protocol"
)

// EventBusNotificationSink publishes email requests on the lifecycle bus,
// where a delivery worker (or, in development, a log subscriber) picks them
// up. No SMTP happens in process.
type EventBusNotificationSink struct {
	bus eventbus.EventBus
}

func NewEventBusNotificationSink(bus eventbus.EventBus) *EventBusNotificationSink {
	return &EventBusNotificationSink{bus: bus}
}

func (s *EventBusNotificationSink) SendEmail(ctx context.Context, message protocol.EmailMessage) error {
	return s.bus.Publish(ctx, events.EmailRequested{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.EmailRequestedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: message.WorkflowID,
		},
		Message: message,
	})
}

// EventBusLogSink publishes log_result records on the lifecycle bus.
type EventBusLogSink struct {
	bus eventbus.EventBus
}

func NewEventBusLogSink(bus eventbus.EventBus) *EventBusLogSink {
	return &EventBusLogSink{bus: bus}
}

func (s *EventBusLogSink) Emit(ctx context.Context, record protocol.LogRecord) error {
	return s.bus.Publish(ctx, events.LogRecord{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.LogRecordEvent,
			Timestamp:  record.Timestamp,
			WorkflowID: record.WorkflowID,
		},
		Record: record,
	})
}

// RepositoryMetricsStore adapts the metrics repository to the action-facing
// MetricsStore contract.
type RepositoryMetricsStore struct {
	repo persistence.MetricsRepository
}

func NewRepositoryMetricsStore(repo persistence.MetricsRepository) *RepositoryMetricsStore {
	return &RepositoryMetricsStore{repo: repo}
}

func (s *RepositoryMetricsStore) RecordSample(ctx context.Context, sample *models.MetricsSample) error {
	return s.repo.AppendSample(ctx, sample)
}
