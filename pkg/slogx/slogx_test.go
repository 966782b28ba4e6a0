package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/aegis/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestSetLevelChangesExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "test", Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { slogx.SetLevel("info") })

	logger.Debug("hidden")
	require.Zero(t, buf.Len())

	slogx.SetLevel("debug")
	require.Equal(t, slog.LevelDebug, slogx.Level())

	logger.Debug("visible")
	require.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, slogx.ParseLevel(in), "input %q", in)
	}
}

func TestHTTPMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "test", Level: "info", Format: "json", Output: &buf})

	h := slogx.HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, slogx.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/blocks/head", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["msg"])
	require.Equal(t, "req-123", line["req_id"])
	require.EqualValues(t, http.StatusTeapot, line["status"])
	require.EqualValues(t, len("short and stout"), line["bytes"])
}

func TestContextLogger(t *testing.T) {
	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "test", Level: "info", Format: "json", Output: &buf})
	ctx := slogx.NewContext(context.Background(), logger)
	require.Same(t, logger, slogx.FromContext(ctx))

	slogx.FromContext(slogx.With(ctx, "principal", "admin")).Info("tagged")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "admin", line["principal"])
	require.Equal(t, "tagged", line["msg"])
}
