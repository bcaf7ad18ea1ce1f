// Package report provides the generate_report action: serializes run data as
// JSON, CSV, or a rendered text template, optionally writing a report file.
package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/template"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "text"
)

var (
	// ErrUnsupportedFormat is returned for formats other than json, csv, text.
	ErrUnsupportedFormat = errors.New("unsupported report format")
	// ErrCSVRequiresObjects is returned when CSV input is not an array of objects.
	ErrCSVRequiresObjects = errors.New("csv format requires an array of objects")
)

// Action serializes data into a report. When Data is nil the full variables
// map of the run is used.
type Action struct {
	Data       any
	hasData    bool
	Format     string
	Template   string
	OutputPath string
	StoreAs    string
}

// NewAction creates a generate_report action from its parameter map.
func NewAction(params map[string]any) (*Action, error) {
	format, _ := params["format"].(string)
	if format == "" {
		format = FormatJSON
	}

	switch format {
	case FormatJSON, FormatCSV, FormatText:
	default:
		return nil, fmt.Errorf("format %q: %w", format, ErrUnsupportedFormat)
	}

	data, hasData := params["data"]
	templateStr, _ := params["template"].(string)
	outputPath, _ := params["outputPath"].(string)
	storeAs, _ := params["storeAs"].(string)

	return &Action{
		Data:       data,
		hasData:    hasData,
		Format:     format,
		Template:   templateStr,
		OutputPath: outputPath,
		StoreAs:    storeAs,
	}, nil
}

// Execute renders the report and, when OutputPath is set, writes it to disk,
// creating directories as needed.
func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "generate_report", "format", a.Format)
	logger.InfoContext(ctx, "Executing generate_report action")

	data := a.Data
	if !a.hasData {
		data = executionCtx.Variables
	}

	report, err := a.render(data)
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"report": report,
		"format": a.Format,
	}

	if a.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(a.OutputPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}

		if err := os.WriteFile(a.OutputPath, []byte(report), 0600); err != nil {
			return nil, fmt.Errorf("failed to write report to %q: %w", a.OutputPath, err)
		}

		result["output_path"] = a.OutputPath
		result["bytes_written"] = len(report)

		logger.InfoContext(ctx, "Report written", "path", a.OutputPath, "bytes", len(report))
	}

	if a.StoreAs != "" {
		executionCtx.SetVariable(a.StoreAs, report)
	}

	return result, nil
}

func (a *Action) render(data any) (string, error) {
	switch a.Format {
	case FormatJSON:
		serialized, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal report data: %w", err)
		}

		return string(serialized), nil
	case FormatCSV:
		return renderCSV(data)
	case FormatText:
		return template.Render(a.Template, asStringMap(data)), nil
	default:
		return "", fmt.Errorf("format %q: %w", a.Format, ErrUnsupportedFormat)
	}
}

// renderCSV emits a header row from the first object's keys (sorted, since
// map iteration order is undefined) followed by one row per object.
func renderCSV(data any) (string, error) {
	rows, ok := data.([]any)
	if !ok || len(rows) == 0 {
		return "", ErrCSVRequiresObjects
	}

	first, ok := rows[0].(map[string]any)
	if !ok {
		return "", ErrCSVRequiresObjects
	}

	headers := make([]string, 0, len(first))
	for key := range first {
		headers = append(headers, key)
	}

	sort.Strings(headers)

	var out strings.Builder

	writer := csv.NewWriter(&out)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, row := range rows {
		object, ok := row.(map[string]any)
		if !ok {
			return "", fmt.Errorf("row %d: %w", i, ErrCSVRequiresObjects)
		}

		record := make([]string, len(headers))

		for j, key := range headers {
			if value, exists := object[key]; exists {
				record[j] = fmt.Sprintf("%v", value)
			}
		}

		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return out.String(), nil
}

func asStringMap(data any) map[string]any {
	if m, ok := data.(map[string]any); ok {
		return m
	}

	return map[string]any{}
}
