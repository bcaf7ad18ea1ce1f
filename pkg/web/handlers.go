// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/persistence"
	"github.com/flowmill/flowmill/pkg/registry"
	"github.com/flowmill/flowmill/pkg/scheduler"
)

const defaultExecutionsLimit = 20

// Executor runs workflows on demand. The workflow engine satisfies it.
type Executor interface {
	ExecuteWorkflow(ctx context.Context, workflowID string) *models.ActionResult
}

// SchedulerControl is the slice of the scheduler the API exposes.
type SchedulerControl interface {
	ScheduleWorkflow(wf *models.Workflow) bool
	RescheduleWorkflow(wf *models.Workflow) bool
	UnscheduleWorkflow(workflowID string) bool
	ScheduledTasks() []models.ScheduledTaskView
	ScheduledTask(workflowID string) (models.ScheduledTaskView, bool)
	ReloadWorkflows(ctx context.Context) error
	GetStats() scheduler.Stats
}

type APIHandlers struct {
	persistence persistence.Persistence
	engine      Executor
	scheduler   SchedulerControl
	registry    *registry.Registry
	validator   *validator.Validate
}

func NewAPIHandlers(
	persistence persistence.Persistence,
	engine Executor,
	schedulerControl SchedulerControl,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		persistence: persistence,
		engine:      engine,
		scheduler:   schedulerControl,
		registry:    registry,
		validator:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.WorkflowRepository().Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	status := models.WorkflowStatusActive
	if req.Status != "" {
		status = models.WorkflowStatus(req.Status)
	}

	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Trigger: models.Trigger{
			Type:     models.TriggerType(req.Trigger.Type),
			Schedule: req.Trigger.Schedule,
		},
		Actions:   toWorkflowActions(req.Actions),
		Status:    status,
		Variables: req.Variables,
		Owner:     req.Owner,
	}

	if err := workflow.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.registry.ValidateWorkflowActions(workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.WorkflowRepository().SaveWorkflow(c.Context(), workflow); err != nil {
		return internalError(c, err)
	}

	if workflow.Schedulable() {
		h.scheduler.ScheduleWorkflow(workflow)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Trigger != nil {
		existing.Trigger = models.Trigger{
			Type:     models.TriggerType(req.Trigger.Type),
			Schedule: req.Trigger.Schedule,
		}
	}

	if req.Actions != nil {
		existing.Actions = toWorkflowActions(req.Actions)
	}

	if req.Status != nil {
		existing.Status = models.WorkflowStatus(*req.Status)
	}

	if req.Variables != nil {
		existing.Variables = req.Variables
	}

	if err := existing.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.registry.ValidateWorkflowActions(existing); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.WorkflowRepository().SaveWorkflow(c.Context(), existing); err != nil {
		return internalError(c, err)
	}

	if existing.Schedulable() {
		h.scheduler.RescheduleWorkflow(existing)
	} else {
		h.scheduler.UnscheduleWorkflow(existing.ID)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.persistence.WorkflowRepository().DeleteWorkflow(c.Context(), id); err != nil {
		return handleRepositoryError(c, err)
	}

	h.scheduler.UnscheduleWorkflow(id)

	return c.SendStatus(fiber.StatusNoContent)
}

// TriggerWorkflow runs a workflow synchronously and reports the outcome.
func (h *APIHandlers) TriggerWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if !workflow.IsActive() {
		return conflict(c, "workflow is not active")
	}

	result := h.engine.ExecuteWorkflow(c.Context(), id)

	response := TriggerResponse{
		WorkflowID: id,
		Success:    result.Success,
		Error:      result.Error,
		DurationMS: result.DurationMS,
	}

	if data, ok := result.Data.(map[string]any); ok {
		if executionID, ok := data["execution_id"].(string); ok {
			response.ExecutionID = executionID
		}
	}

	return c.JSON(response)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id); err != nil {
		return handleRepositoryError(c, err)
	}

	limit := defaultExecutionsLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	entries, err := h.persistence.ExecutionLogRepository().RecentForWorkflow(c.Context(), id, limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id": id,
		"executions":  entries,
	})
}

func (h *APIHandlers) GetScheduledTasks(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"tasks": h.scheduler.ScheduledTasks(),
	})
}

func (h *APIHandlers) GetScheduledTask(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	task, ok := h.scheduler.ScheduledTask(id)
	if !ok {
		return notFound(c, "No scheduled task for workflow")
	}

	return c.JSON(task)
}

func (h *APIHandlers) GetSchedulerStats(c fiber.Ctx) error {
	return c.JSON(h.scheduler.GetStats())
}

func (h *APIHandlers) ReloadScheduler(c fiber.Ctx) error {
	if err := h.scheduler.ReloadWorkflows(c.Context()); err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"reloaded": true,
		"stats":    h.scheduler.GetStats(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Flowmill API is healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Flowmill API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":       status,
		"message":      message,
		"action_types": h.registry.ActionTypes(),
		"timestamp":    time.Now().UTC(),
	})
}

func toWorkflowActions(requests []ActionRequest) []*models.WorkflowAction {
	actions := make([]*models.WorkflowAction, 0, len(requests))
	for _, request := range requests {
		actions = append(actions, &models.WorkflowAction{
			Type:       models.ActionType(request.Type),
			Parameters: request.Parameters,
		})
	}

	return actions
}
