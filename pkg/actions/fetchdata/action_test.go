package fetchdata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmill/flowmill/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAction(t *testing.T) {
	t.Parallel()

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()

		_, err := NewAction(map[string]any{})
		require.ErrorIs(t, err, ErrMissingURL)
		assert.Equal(t, "URL parameter is required", err.Error())
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		action, err := NewAction(map[string]any{"url": "http://example.com"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, action.Method)
		assert.Equal(t, 30*time.Second, action.Timeout)
	})

	t.Run("method is uppercased", func(t *testing.T) {
		t.Parallel()

		action, err := NewAction(map[string]any{"url": "http://example.com", "method": "post"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, action.Method)
	})
}

func TestAction_Execute_JSONResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","count":2}`))
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{
		"url":     server.URL,
		"headers": map[string]any{"Authorization": "token-123"},
		"storeAs": "api_response",
	})
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	data, err := action.Execute(context.Background(), execCtx, testLogger())
	require.NoError(t, err)

	result, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, result["status_code"])

	body, ok := result["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", body["status"])

	stored, ok := execCtx.Variables["api_response"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), stored["count"])
}

func TestAction_Execute_NonJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text response"))
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	data, err := action.Execute(context.Background(), execCtx, testLogger())
	require.NoError(t, err)

	result := data.(map[string]any)
	assert.Equal(t, "plain text response", result["body"])
}

func TestAction_Execute_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	_, err = action.Execute(context.Background(), execCtx, testLogger())
	require.ErrorIs(t, err, ErrHTTPStatus)
	assert.Contains(t, err.Error(), "500")
}

func TestAction_Execute_PostBody(t *testing.T) {
	t.Parallel()

	var received []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":true}`))
	}))
	defer server.Close()

	action, err := NewAction(map[string]any{
		"url":    server.URL,
		"method": "POST",
		"body":   `{"name":"item"}`,
	})
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	data, err := action.Execute(context.Background(), execCtx, testLogger())
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"item"}`, string(received))
	assert.Equal(t, http.StatusCreated, data.(map[string]any)["status_code"])
}

func TestFactory(t *testing.T) {
	t.Parallel()

	factory := NewFactory()
	assert.Equal(t, "fetch_data", factory.ID())

	schema := factory.Schema()
	assert.Contains(t, schema["required"], "url")

	_, err := factory.Create(map[string]any{})
	assert.ErrorIs(t, err, ErrMissingURL)
}
