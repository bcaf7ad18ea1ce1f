// Package fetchdata provides the fetch_data action: an HTTP call whose JSON
// response can be stored in the run's variables for later actions.
package fetchdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flowmill/flowmill/pkg/models"
)

const defaultTimeoutSeconds = 30

var (
	// ErrMissingURL is returned when the url parameter is absent.
	ErrMissingURL = errors.New("URL parameter is required")
	// ErrHTTPStatus is returned when the response status is not 2xx.
	ErrHTTPStatus = errors.New("http request returned error status")
)

// Action performs one HTTP request. A non-2xx response fails the action.
type Action struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
	StoreAs string
	Timeout time.Duration
}

// NewAction creates a fetch_data action from its parameter map.
func NewAction(params map[string]any) (*Action, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return nil, ErrMissingURL
	}

	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	body, _ := params["body"].(string)
	storeAs, _ := params["storeAs"].(string)

	headers := make(map[string]string)

	if headersConfig, exists := params["headers"]; exists {
		if headersMap, ok := headersConfig.(map[string]any); ok {
			for k, v := range headersMap {
				if strVal, ok := v.(string); ok {
					headers[k] = strVal
				}
			}
		}
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := params["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &Action{
		URL:     url,
		Method:  strings.ToUpper(method),
		Headers: headers,
		Body:    body,
		StoreAs: storeAs,
		Timeout: timeout,
	}, nil
}

// Execute issues the request and parses the response body as JSON, falling
// back to the raw string when the body is not JSON.
func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "fetch_data", "url", a.URL, "method", a.Method)
	logger.InfoContext(ctx, "Executing fetch_data action")

	var bodyReader io.Reader
	if a.Body != "" {
		bodyReader = strings.NewReader(a.Body)
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, value := range a.Headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: a.Timeout}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http request failed with status %d %s: %w",
			resp.StatusCode, http.StatusText(resp.StatusCode), ErrHTTPStatus)
	}

	var body any
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		body = string(bodyBytes)

		logger.WarnContext(ctx, "Failed to parse response as JSON, keeping raw string", "error", err)
	}

	if a.StoreAs != "" {
		executionCtx.SetVariable(a.StoreAs, body)
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"body":        body,
		"headers":     resp.Header,
	}

	logger.InfoContext(ctx, "fetch_data completed",
		"status_code", resp.StatusCode, "body_length", len(bodyBytes))

	return result, nil
}
