package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionSuppressesInfoAndDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("debug message that should not appear")
	logger.Info("info message that should not appear")
	logger.Warn("catalog warning", "name", "greet")

	output := buf.String()
	assert.NotContains(t, output, "should not appear")
	assert.Contains(t, output, "catalog warning")
	assert.Contains(t, output, "greet")
	assert.False(t, logger.IsDebug())
}

func TestNew_DebugMode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug("visible debug", "key", "value")

	assert.Contains(t, buf.String(), "visible debug")
	assert.True(t, logger.IsDebug())
}

func TestLogPerformance(t *testing.T) {
	logger, buf := NewTestLogger()

	start := time.Now()
	time.Sleep(1 * time.Millisecond)
	logger.LogPerformance("catalog_build", start)

	output := buf.String()
	assert.Contains(t, output, "Performance")
	assert.Contains(t, output, "catalog_build")
	assert.Contains(t, output, "duration")
}

func TestLogStateTransition(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogStateTransition("session", "uninitialized", "awaiting_initialized")

	output := buf.String()
	assert.Contains(t, output, "State transition")
	assert.Contains(t, output, "session")
	assert.Contains(t, output, "uninitialized")
	assert.Contains(t, output, "awaiting_initialized")
}

func TestLogStateTransition_DisabledInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.LogStateTransition("session", "ready", "terminated")

	assert.Empty(t, buf.String())
}

func TestNewAppLogger_DebugWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DEBUG", "1")

	logger := NewAppLogger()
	require.True(t, logger.IsDebug())
	logger.Debug("written to file")

	data, err := os.ReadFile(filepath.Join(dir, DebugLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Debug logging enabled")
	assert.Contains(t, string(data), "written to file")
}

func TestNewAppLogger_ProductionUsesStderr(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DEBUG", "")

	logger := NewAppLogger()
	assert.False(t, logger.IsDebug())

	_, err := os.Stat(filepath.Join(dir, DebugLogFile))
	assert.True(t, os.IsNotExist(err))
}

func TestGetDefault_Singleton(t *testing.T) {
	defaultLogger = nil
	once = sync.Once{}
	t.Setenv("DEBUG", "")

	logger1 := GetDefault()
	logger2 := GetDefault()

	assert.Same(t, logger1, logger2)

	// package-level helpers must not panic
	Info("package level info")
	Warn("package level warn")
	Debug("package level debug")
	LogPerformance("package_operation", time.Now())
}

func BenchmarkDebug(b *testing.B) {
	logger, _ := NewTestLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("benchmark debug message", "iteration", i)
	}
}
