// Package file provides the file-system persistence driver. Each workflow is
// stored as one JSON document; execution logs and metrics samples are stored
// as JSON arrays per owner. It is the development and test driver, matching
// the shape of the postgresql driver.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/flowmill/flowmill/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root          string
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionLogRepository
	metricsRepo   *MetricsRepository
}

// NewPersistence creates a file driver rooted at the given directory. A
// "file://" prefix is stripped so database URLs can be passed through.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.TrimPrefix(root, "file://")

	return &Persistence{
		root:          cleanRoot,
		workflowRepo:  NewWorkflowRepository(cleanRoot),
		executionRepo: NewExecutionLogRepository(cleanRoot),
		metricsRepo:   NewMetricsRepository(cleanRoot),
	}
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ExecutionLogRepository() persistence.ExecutionLogRepository {
	return fp.executionRepo
}

func (fp *Persistence) MetricsRepository() persistence.MetricsRepository {
	return fp.metricsRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For the file driver there is nothing
// to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
