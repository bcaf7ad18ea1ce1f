package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/flowmill/flowmill/pkg/models"
)

// ExecutionLogRepository stores the append-only execution audit trail.
type ExecutionLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionLogRepository(db *sql.DB, logger *slog.Logger) *ExecutionLogRepository {
	return &ExecutionLogRepository{
		db:     db,
		logger: logger.With("repository", "execution_log"),
	}
}

func (r *ExecutionLogRepository) Append(ctx context.Context, entry *models.ExecutionLog) error {
	query := `
		INSERT INTO execution_logs (id, workflow_id, execution_id, status, message, execution_time, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.WorkflowID,
		entry.ExecutionID,
		string(entry.Status),
		entry.Message,
		entry.ExecutionTime,
		entry.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to append execution log: %w", err)
	}

	return nil
}

func (r *ExecutionLogRepository) RecentForWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionLog, error) {
	query := `
		SELECT id, workflow_id, execution_id, status, message, execution_time, duration_ms
		FROM execution_logs
		WHERE workflow_id = $1
		ORDER BY execution_time DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ExecutionLog, 0)

	for rows.Next() {
		var (
			entry  models.ExecutionLog
			status string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.WorkflowID,
			&entry.ExecutionID,
			&status,
			&entry.Message,
			&entry.ExecutionTime,
			&entry.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution log row: %w", err)
		}

		entry.Status = models.ExecutionStatus(status)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate execution log rows: %w", err)
	}

	return entries, nil
}
