package logger_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/denrzv/audio-review-backend/internal/logger"
)

// decodeLines parses every JSON line written to buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSlogLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level logger.LogLevel
		want  []string
	}{
		{"trace shows everything", logger.LogLevelTrace, []string{"t", "d", "i", "w", "e"}},
		{"info hides debug", logger.LogLevelInfo, []string{"i", "w", "e"}},
		{"error only", logger.LogLevelError, []string{"e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.NewSlogLogger(buf, tt.level, time.UTC)

			log.Trace("t")
			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e")

			var got []string
			for _, e := range decodeLines(t, buf) {
				got = append(got, e["msg"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModuleAndFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	base := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	log := base.Module("review").Module("allocator").With(logger.Uint64("reviewer_id", 7))
	log.Info("lease acquired",
		logger.Uint64("item_id", 42),
		logger.Bool("reclaimed", true),
		logger.Duration("elapsed", 1500*time.Microsecond),
		logger.Error(errors.New("none")))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "review.allocator", e["module"])
	assert.EqualValues(t, 7, e["reviewer_id"])
	assert.EqualValues(t, 42, e["item_id"])
	assert.Equal(t, true, e["reclaimed"])
	assert.Equal(t, "1.5ms", e["elapsed"])
	assert.Equal(t, "none", e["error"])
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	parent := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC).Module("review")
	_ = parent.With(logger.String("child", "yes"))
	parent.Info("parent entry")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "child")
}

func TestWithContextAddsTraceID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)

	ctx := logger.WithTraceID(context.Background(), "abc12345")
	log.WithContext(ctx).Info("with trace")
	log.WithContext(context.Background()).Info("without trace")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc12345", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestCentralLoggerModuleLevelsAndFileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "review.log")
	cl, err := logger.NewCentralLogger(&logger.LoggingConfig{
		DefaultLevel: "info",
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput:   &logger.FileOutput{Enabled: true, Path: path, Level: "trace"},
		ModuleLevels: map[string]string{"datastore": "trace"},
	})
	require.NoError(t, err)

	cl.Module("review").Debug("hidden by module level")
	cl.Module("datastore").Trace("visible sql")
	cl.Module("review").Info("visible info")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := decodeLines(t, bytes.NewBuffer(data))
	require.Len(t, entries, 2)
	assert.Equal(t, "visible sql", entries[0]["msg"])
	assert.Equal(t, "TRACE", entries[0]["level"])
	assert.Equal(t, "visible info", entries[1]["msg"])
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	t.Parallel()

	_, err := logger.NewCentralLogger(&logger.LoggingConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)

	_, err = logger.NewCentralLogger(nil)
	require.Error(t, err)
}

func TestGormLoggerAdapter(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	adapter := logger.NewGormLoggerAdapter(logger.NewSlogLogger(buf, logger.LogLevelTrace, time.UTC), 50*time.Millisecond)
	assert.Same(t, adapter, adapter.LogMode(gorm_logger.Silent))

	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	adapter.Trace(ctx, time.Now(), sql, nil)
	adapter.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	adapter.Trace(ctx, time.Now(), sql, errors.New("disk I/O error"))
	adapter.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "sql query", entries[0]["msg"])
	assert.Equal(t, "slow query", entries[1]["msg"])
	assert.Equal(t, "query error", entries[2]["msg"])
	assert.Equal(t, "sql query", entries[3]["msg"])
}
