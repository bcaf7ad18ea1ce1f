// Package models defines the core domain models for workflow automation.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive WorkflowStatus = "active" // Executable and schedulable
	WorkflowStatusPaused WorkflowStatus = "paused" // Kept, but never executed
	WorkflowStatusError  WorkflowStatus = "error"  // Parked by the escalation policy
)

// TriggerType identifies how a workflow run is started.
type TriggerType string

const (
	TriggerTypeCron   TriggerType = "cron"
	TriggerTypeManual TriggerType = "manual"
	TriggerTypeEvent  TriggerType = "event"
)

// Trigger describes what starts a workflow. Schedule is a standard 5-field
// crontab expression and is required when Type is cron.
type Trigger struct {
	Type     TriggerType `json:"type"               validate:"required,oneof=cron manual event"`
	Schedule string      `json:"schedule,omitempty"`
}

var ErrScheduleRequired = errors.New("cron trigger requires a schedule expression")

// Validate checks the trigger, including the cron expression when present.
func (t *Trigger) Validate() error {
	if t.Type == TriggerTypeCron {
		if t.Schedule == "" {
			return ErrScheduleRequired
		}

		if _, err := cron.ParseStandard(t.Schedule); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", t.Schedule, err)
		}
	}

	return nil
}

// NextFireTime returns the next time a cron trigger is due after ref.
func (t *Trigger) NextFireTime(ref time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(t.Schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", t.Schedule, err)
	}

	return schedule.Next(ref), nil
}

// Workflow represents a named, ordered list of typed actions with a trigger
// and a lifecycle status.
type Workflow struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"        validate:"required,min=3"`
	Description string            `json:"description"`
	Trigger     Trigger           `json:"trigger"`
	Actions     []*WorkflowAction `json:"actions"`
	Status      WorkflowStatus    `json:"status"      validate:"required,oneof=active paused error"`
	Variables   map[string]any    `json:"variables,omitempty"`
	Owner       string            `json:"owner,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints and the trigger configuration.
func (w *Workflow) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("workflow validation failed: %w", err)
	}

	return w.Trigger.Validate()
}

// IsActive reports whether the workflow may be executed or scheduled.
func (w *Workflow) IsActive() bool {
	return w.Status == WorkflowStatusActive
}

// Schedulable reports whether the scheduler should own this workflow: it must
// be active and carry a cron trigger with a schedule.
func (w *Workflow) Schedulable() bool {
	return w.IsActive() && w.Trigger.Type == TriggerTypeCron && w.Trigger.Schedule != ""
}
