package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/flowmill/flowmill/pkg/models"
)

// MetricsRepository stores metrics/samples.json as an append-only JSON array.
type MetricsRepository struct {
	root string
	mu   sync.Mutex
}

func NewMetricsRepository(root string) *MetricsRepository {
	return &MetricsRepository{root: root}
}

func (mr *MetricsRepository) filePath() string {
	return path.Join(mr.root, "metrics", "samples.json")
}

// AppendSample adds one sample to the store.
func (mr *MetricsRepository) AppendSample(_ context.Context, sample *models.MetricsSample) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	samples, err := mr.readAll()
	if err != nil {
		return err
	}

	samples = append(samples, sample)

	if err := os.MkdirAll(path.Join(mr.root, "metrics"), 0750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics samples: %w", err)
	}

	return os.WriteFile(mr.filePath(), data, 0600)
}

// RecentSamples returns up to limit samples, newest last in storage order.
func (mr *MetricsRepository) RecentSamples(_ context.Context, limit int) ([]*models.MetricsSample, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	samples, err := mr.readAll()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}

	return samples, nil
}

func (mr *MetricsRepository) readAll() ([]*models.MetricsSample, error) {
	body, err := os.ReadFile(filepath.Clean(mr.filePath()))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.MetricsSample{}, nil
		}

		return nil, fmt.Errorf("failed to read metrics samples: %w", err)
	}

	var samples []*models.MetricsSample
	if err := json.Unmarshal(body, &samples); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics samples: %w", err)
	}

	return samples, nil
}
