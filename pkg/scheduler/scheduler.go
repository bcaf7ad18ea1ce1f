// Package scheduler owns the cron-triggered subset of workflows: one timer
// per active cron workflow, with a single-flight guard so overlapping ticks
// for the same workflow are dropped, never queued.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/persistence"
)

// Executor is the engine surface the scheduler dispatches to.
type Executor interface {
	ExecuteWorkflow(ctx context.Context, workflowID string) *models.ActionResult
	RunningExecutions() []models.ExecutionSnapshot
}

// scheduledTask binds a workflow id to its active cron timer. It exists only
// while the scheduler holds a registration for the workflow.
type scheduledTask struct {
	workflowID     string
	cronExpression string
	timer          *cron.Cron
	schedule       cron.Schedule
	isRunning      bool
	lastRun        *time.Time
	nextRun        *time.Time
}

// Stats is the scheduler's introspection summary.
type Stats struct {
	Running            bool       `json:"running"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	ScheduledWorkflows int        `json:"scheduled_workflows"`
	RunningTasks       int        `json:"running_tasks"`
	RunningExecutions  int        `json:"running_executions"`
}

// Scheduler maps workflow ids to cron timers and guarantees at most one
// concurrent engine invocation per workflow id. The mutex guards the task
// registry and every isRunning check-then-set, since robfig cron fires each
// job on its own goroutine.
type Scheduler struct {
	engine    Executor
	workflows persistence.WorkflowRepository
	logger    *slog.Logger

	mu        sync.Mutex
	tasks     map[string]*scheduledTask
	started   bool
	startedAt time.Time

	// dispatchCtx is handed to engine runs started by timer ticks.
	dispatchCtx context.Context
}

func NewScheduler(engine Executor, workflows persistence.WorkflowRepository, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:      engine,
		workflows:   workflows,
		logger:      logger.With("module", "workflow_scheduler"),
		tasks:       make(map[string]*scheduledTask),
		dispatchCtx: context.Background(),
	}
}

// Start loads every active cron workflow and schedules it. Starting an
// already-started scheduler logs a warning and does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.started {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Scheduler already started")

		return nil
	}

	s.mu.Unlock()

	// Load before flipping state: a store failure must leave the scheduler
	// stopped so a later Start can retry.
	workflows, err := s.workflows.ActiveWorkflows(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load active workflows", "error", err)

		return err
	}

	s.mu.Lock()

	if s.started {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Scheduler already started")

		return nil
	}

	s.started = true
	s.startedAt = time.Now().UTC()
	s.dispatchCtx = context.WithoutCancel(ctx)

	// Timers registered before Start were left inert; start them now.
	for _, task := range s.tasks {
		task.timer.Start()
	}

	s.mu.Unlock()

	scheduled := 0

	for _, wf := range workflows {
		if s.ScheduleWorkflow(wf) {
			scheduled++
		}
	}

	s.logger.InfoContext(ctx, "Scheduler started",
		"active_workflows", len(workflows), "scheduled", scheduled)

	return nil
}

// Stop discards every scheduled task. Stopping a stopped scheduler logs a
// warning and does nothing.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.logger.WarnContext(ctx, "Scheduler is not running")

		return
	}

	for _, task := range s.tasks {
		task.timer.Stop()
	}

	s.tasks = make(map[string]*scheduledTask)
	s.started = false

	s.logger.InfoContext(ctx, "Scheduler stopped")
}

// ScheduleWorkflow registers a cron timer for the workflow. It returns false
// (never an error) when the workflow is not schedulable: wrong trigger type,
// missing schedule, inactive status, or invalid cron expression. An existing
// registration for the same workflow id is stopped and replaced.
func (s *Scheduler) ScheduleWorkflow(wf *models.Workflow) bool {
	logger := s.logger.With("workflow_id", wf.ID)

	if wf.Trigger.Type != models.TriggerTypeCron {
		logger.Warn("Workflow trigger is not cron, not scheduling", "trigger_type", wf.Trigger.Type)

		return false
	}

	if wf.Trigger.Schedule == "" {
		logger.Warn("Workflow has no cron schedule, not scheduling")

		return false
	}

	if !wf.IsActive() {
		logger.Warn("Workflow is not active, not scheduling", "status", wf.Status)

		return false
	}

	schedule, err := cron.ParseStandard(wf.Trigger.Schedule)
	if err != nil {
		logger.Warn("Invalid cron expression, not scheduling",
			"schedule", wf.Trigger.Schedule, "error", err)

		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tasks[wf.ID]; ok {
		existing.timer.Stop()
		delete(s.tasks, wf.ID)
	}

	workflowID := wf.ID
	timer := cron.New()

	if _, err := timer.AddFunc(wf.Trigger.Schedule, func() {
		s.executeScheduled(workflowID)
	}); err != nil {
		logger.Warn("Failed to register cron job", "error", err)

		return false
	}

	next := schedule.Next(time.Now())
	task := &scheduledTask{
		workflowID:     wf.ID,
		cronExpression: wf.Trigger.Schedule,
		timer:          timer,
		schedule:       schedule,
		nextRun:        &next,
	}

	s.tasks[wf.ID] = task

	// The timer stays inert until the scheduler itself runs.
	if s.started {
		timer.Start()
	}

	logger.Info("Workflow scheduled", "schedule", wf.Trigger.Schedule, "next_run", next)

	return true
}

// UnscheduleWorkflow stops and removes the workflow's task. Returns false
// when no task exists for the id.
func (s *Scheduler) UnscheduleWorkflow(workflowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[workflowID]
	if !ok {
		return false
	}

	task.timer.Stop()
	delete(s.tasks, workflowID)

	s.logger.Info("Workflow unscheduled", "workflow_id", workflowID)

	return true
}

// RescheduleWorkflow re-registers a workflow after its trigger or status
// changed.
func (s *Scheduler) RescheduleWorkflow(wf *models.Workflow) bool {
	s.UnscheduleWorkflow(wf.ID)

	return s.ScheduleWorkflow(wf)
}

// TriggerWorkflow fires an existing cron registration out of band. It does
// not schedule ad hoc: without a registered task it returns false.
func (s *Scheduler) TriggerWorkflow(workflowID string) bool {
	s.mu.Lock()
	_, ok := s.tasks[workflowID]
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("Cannot trigger unscheduled workflow", "workflow_id", workflowID)

		return false
	}

	go s.executeScheduled(workflowID)

	return true
}

// ReloadWorkflows drops every registration and rebuilds the registry from
// the store; used after external mutation of the workflow set.
func (s *Scheduler) ReloadWorkflows(ctx context.Context) error {
	s.mu.Lock()

	if !s.started {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Scheduler is not running, skipping reload")

		return nil
	}

	for _, task := range s.tasks {
		task.timer.Stop()
	}

	s.tasks = make(map[string]*scheduledTask)
	s.mu.Unlock()

	workflows, err := s.workflows.ActiveWorkflows(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to reload active workflows", "error", err)

		return err
	}

	scheduled := 0

	for _, wf := range workflows {
		if s.ScheduleWorkflow(wf) {
			scheduled++
		}
	}

	s.logger.InfoContext(ctx, "Workflows reloaded",
		"active_workflows", len(workflows), "scheduled", scheduled)

	return nil
}

// executeScheduled is the single dispatch path for timer ticks and manual
// triggers. The isRunning check-then-set happens under the scheduler mutex;
// an overlapping tick for a still-running workflow is dropped.
func (s *Scheduler) executeScheduled(workflowID string) {
	logger := s.logger.With("workflow_id", workflowID)

	s.mu.Lock()

	task, ok := s.tasks[workflowID]
	if !ok {
		s.mu.Unlock()
		logger.Warn("Dispatch for unknown scheduled workflow")

		return
	}

	if task.isRunning {
		s.mu.Unlock()
		logger.Info("Previous execution still running, skipping tick")

		return
	}

	task.isRunning = true
	now := time.Now().UTC()
	task.lastRun = &now
	ctx := s.dispatchCtx

	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// The task may have been unscheduled while the run was in flight.
		if task, ok := s.tasks[workflowID]; ok {
			task.isRunning = false
			next := task.schedule.Next(time.Now())
			task.nextRun = &next
		}
	}()

	result := s.engine.ExecuteWorkflow(ctx, workflowID)
	if !result.Success {
		logger.Warn("Scheduled execution failed", "error", result.Error)
	}
}

// ScheduledTasks returns a snapshot of every registration.
func (s *Scheduler) ScheduledTasks() []models.ScheduledTaskView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]models.ScheduledTaskView, 0, len(s.tasks))
	for _, task := range s.tasks {
		views = append(views, task.view())
	}

	return views
}

// ScheduledTask returns the registration for one workflow id.
func (s *Scheduler) ScheduledTask(workflowID string) (models.ScheduledTaskView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[workflowID]
	if !ok {
		return models.ScheduledTaskView{}, false
	}

	return task.view(), true
}

// GetStats summarizes the scheduler state, delegating the running-execution
// count to the engine.
func (s *Scheduler) GetStats() Stats {
	s.mu.Lock()

	stats := Stats{
		Running:            s.started,
		ScheduledWorkflows: len(s.tasks),
	}

	if s.started {
		startedAt := s.startedAt
		stats.StartedAt = &startedAt
	}

	for _, task := range s.tasks {
		if task.isRunning {
			stats.RunningTasks++
		}
	}

	s.mu.Unlock()

	stats.RunningExecutions = len(s.engine.RunningExecutions())

	return stats
}

func (t *scheduledTask) view() models.ScheduledTaskView {
	return models.ScheduledTaskView{
		WorkflowID:     t.workflowID,
		CronExpression: t.cronExpression,
		IsRunning:      t.isRunning,
		LastRun:        t.lastRun,
		NextRun:        t.nextRun,
	}
}
