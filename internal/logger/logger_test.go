package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("loud"))
}

func TestNew_LevelGate(t *testing.T) {
	log, err := New(Config{Level: "warn", Dev: true})
	require.NoError(t, err)
	assert.Nil(t, log.Check(zapcore.InfoLevel, "hidden"))
	assert.NotNil(t, log.Check(zapcore.WarnLevel, "shown"))
}

func TestNew_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.log")
	log, err := New(Config{Level: "info", File: path, MaxAgeDays: 1})
	require.NoError(t, err)

	log.Info("task created", zap.Uint("task_id", 7))
	_ = log.Sync()

	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_id":7`)
	assert.Contains(t, string(data), "task created")
}
