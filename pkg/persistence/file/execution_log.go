package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/flowmill/flowmill/pkg/models"
)

// ExecutionLogRepository stores executions/<workflow_id>.json as an
// append-only JSON array of log entries.
type ExecutionLogRepository struct {
	root string
	mu   sync.Mutex
}

func NewExecutionLogRepository(root string) *ExecutionLogRepository {
	return &ExecutionLogRepository{root: root}
}

func (er *ExecutionLogRepository) filePath(workflowID string) string {
	return path.Join(er.root, "executions", workflowID+".json")
}

// Append adds one entry to the workflow's log file.
func (er *ExecutionLogRepository) Append(_ context.Context, entry *models.ExecutionLog) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	entries, err := er.readAll(entry.WorkflowID)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	if err := os.MkdirAll(path.Join(er.root, "executions"), 0750); err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution logs for workflow %s: %w", entry.WorkflowID, err)
	}

	return os.WriteFile(er.filePath(entry.WorkflowID), data, 0600)
}

// RecentForWorkflow returns up to limit entries, newest first.
func (er *ExecutionLogRepository) RecentForWorkflow(_ context.Context, workflowID string, limit int) ([]*models.ExecutionLog, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	entries, err := er.readAll(workflowID)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ExecutionTime.After(entries[j].ExecutionTime)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (er *ExecutionLogRepository) readAll(workflowID string) ([]*models.ExecutionLog, error) {
	body, err := os.ReadFile(filepath.Clean(er.filePath(workflowID)))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.ExecutionLog{}, nil
		}

		return nil, fmt.Errorf("failed to read execution logs for workflow %s: %w", workflowID, err)
	}

	var entries []*models.ExecutionLog
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution logs for workflow %s: %w", workflowID, err)
	}

	return entries, nil
}
