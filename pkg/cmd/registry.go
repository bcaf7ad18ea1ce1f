// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/flowmill/flowmill/pkg/actions/email"
	"github.com/flowmill/flowmill/pkg/actions/fetchdata"
	"github.com/flowmill/flowmill/pkg/actions/logresult"
	"github.com/flowmill/flowmill/pkg/actions/report"
	"github.com/flowmill/flowmill/pkg/actions/sysmetrics"
	"github.com/flowmill/flowmill/pkg/eventbus"
	"github.com/flowmill/flowmill/pkg/persistence"
	"github.com/flowmill/flowmill/pkg/registry"
	"github.com/flowmill/flowmill/pkg/sinks"
)

// NewRegistry wires the five native actions with their sinks. Email and log
// records go through the event bus; metrics samples land in the store.
func NewRegistry(logger *slog.Logger, bus eventbus.EventBus, store persistence.Persistence) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(fetchdata.NewFactory())
	reg.RegisterAction(report.NewFactory())
	reg.RegisterAction(email.NewFactory(sinks.NewEventBusNotificationSink(bus)))
	reg.RegisterAction(sysmetrics.NewFactory(nil, sinks.NewRepositoryMetricsStore(store.MetricsRepository())))
	reg.RegisterAction(logresult.NewFactory(sinks.NewEventBusLogSink(bus)))

	return reg
}
