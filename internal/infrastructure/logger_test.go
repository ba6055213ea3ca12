package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/internal/config"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "data_processing.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}
	if GetLogger() != logger {
		t.Error("GetLogger did not return the initialized logger")
	}

	logger.Info("test message", "key", "value")
	logger.Debug("dropped")
	CloseLogFile()

	entries := readLines(t, logFile)
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestLogFileAppends(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "data_processing.log")
	cfg := config.LoggingConfig{Level: "info", Output: "file", FilePath: logFile}

	for i := 0; i < 2; i++ {
		logger, err := NewLogger(cfg, nil)
		require.NoError(t, err)
		logger.Info("run")
		require.NoError(t, CloseLogFile())
	}

	assert.Len(t, readLines(t, logFile), 2)
}

func TestContextIDsInjected(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: logFile}, nil)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithRequestID(ctx, "req-9")
	logger.InfoContext(ctx, "with ids")
	logger.Info("without ids")
	CloseLogFile()

	entries := readLines(t, logFile)
	require.Len(t, entries, 2)
	assert.Equal(t, "run-123", entries[0]["run_id"])
	assert.Equal(t, "req-9", entries[0]["request_id"])
	assert.NotContains(t, entries[1], "run_id")
}

func TestBothOutputs(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewLogger(config.LoggingConfig{
		Level:    "warn",
		Format:   "text",
		Output:   "both",
		FilePath: logFile,
	}, &console)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.With("component", "align").Warn("loud", "steps", 3)
	CloseLogFile()

	assert.Contains(t, console.String(), "loud")
	assert.Contains(t, console.String(), "steps=3")
	assert.NotContains(t, console.String(), "quiet")

	entries := readLines(t, logFile)
	require.Len(t, entries, 1)
	assert.Equal(t, "align", entries[0]["component"])
	assert.Equal(t, float64(3), entries[0]["steps"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLogLevel(tt.level); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestAppendFatal(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "data_processing.log")
	require.NoError(t, os.WriteFile(logFile, []byte(`{"msg":"earlier"}`+"\n"), 0644))

	require.NoError(t, AppendFatal(logFile, errors.New("sheet not found")))

	entries := readLines(t, logFile)
	require.Len(t, entries, 2)
	assert.Equal(t, "earlier", entries[0]["msg"])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "sheet not found", entries[1]["error"])
}

func TestEnsureRunID(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	id := GetRunID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)))
}
