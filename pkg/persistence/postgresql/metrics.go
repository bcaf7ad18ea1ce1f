package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/flowmill/flowmill/pkg/models"
)

// MetricsRepository stores host metrics samples recorded by workflow actions.
type MetricsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMetricsRepository(db *sql.DB, logger *slog.Logger) *MetricsRepository {
	return &MetricsRepository{
		db:     db,
		logger: logger.With("repository", "metrics"),
	}
}

func (r *MetricsRepository) AppendSample(ctx context.Context, sample *models.MetricsSample) error {
	query := `
		INSERT INTO metrics_samples (cpu_percent, memory_percent, memory_used, memory_total, sampled_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		sample.CPUPercent,
		sample.MemoryPercent,
		int64(sample.MemoryUsed),
		int64(sample.MemoryTotal),
		sample.SampledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append metrics sample: %w", err)
	}

	return nil
}

func (r *MetricsRepository) RecentSamples(ctx context.Context, limit int) ([]*models.MetricsSample, error) {
	query := `
		SELECT cpu_percent, memory_percent, memory_used, memory_total, sampled_at
		FROM metrics_samples
		ORDER BY sampled_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics samples: %w", err)
	}
	defer rows.Close()

	samples := make([]*models.MetricsSample, 0)

	for rows.Next() {
		var (
			sample      models.MetricsSample
			memoryUsed  int64
			memoryTotal int64
		)

		err := rows.Scan(
			&sample.CPUPercent,
			&sample.MemoryPercent,
			&memoryUsed,
			&memoryTotal,
			&sample.SampledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metrics sample row: %w", err)
		}

		sample.MemoryUsed = uint64(memoryUsed)
		sample.MemoryTotal = uint64(memoryTotal)
		samples = append(samples, &sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics sample rows: %w", err)
	}

	return samples, nil
}
