package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestBacktestLoggerSplit(t *testing.T) {
	log, buf := setupTestLogger()
	bl := NewBacktestLogger(log, "E0")

	bl.LogSplit(100, 80, 20, 0.2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "E0", logEntry["domain"])
	assert.Equal(t, float64(20), logEntry["matches_holdout"])
}

func TestBacktestLoggerVerdictLevels(t *testing.T) {
	log, buf := setupTestLogger()
	bl := NewBacktestLogger(log, "E0")

	bl.LogVerdict(true, 0.2, 0.6, 10, nil)
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, true, logEntry["passed"])

	buf.Reset()
	bl.LogVerdict(false, 0, 0, 0, []string{"no qualifying bets"})
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
}

func TestBacktestLoggerSkippedAndUnavailable(t *testing.T) {
	log, buf := setupTestLogger()
	bl := NewBacktestLogger(log, "SP1")

	bl.LogSkippedMatch("m-1", "selected odds missing")
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "m-1", logEntry["match_id"])

	buf.Reset()
	bl.LogModelUnavailable(errors.New("no classifier"))
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "no classifier", logEntry["error"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLogger("loud")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "backtest.log")
	log := NewLoggerWithOptions(Options{Level: "debug", File: path, MaxSizeMB: 1})

	log.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}
