package common

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetLoggers(t *testing.T) {
	loggerMutex.Lock()
	savedMap, savedConfig := moduleLoggersMap, moduleLogConfig
	moduleLoggersMap = make(map[string]*ModuleLogger)
	moduleLogConfig = nil
	loggerMutex.Unlock()

	t.Cleanup(func() {
		loggerMutex.Lock()
		moduleLoggersMap, moduleLogConfig = savedMap, savedConfig
		loggerMutex.Unlock()
	})
}

func TestGetLoggerWithoutConfigWritesNoFile(t *testing.T) {
	resetLoggers(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	log := GetLogger(MODULE_TRAINER)
	log.Warnf("nothing configured yet")
	_ = log.Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "", moduleLogConfig.LogPath)
}

func TestModuleSpecialLevel(t *testing.T) {
	lc := &LogConfig{
		LogLevel:           LEVEL_ERROR,
		ModuleSpecialLevel: map[string]LOG_LEVEL{MODULE_TRAINER: LEVEL_DEBUG},
	}

	trainer := NewSugaredLogger(MODULE_TRAINER, lc).Desugar().Core()
	assert.True(t, trainer.Enabled(zap.DebugLevel))

	node := NewSugaredLogger(MODULE_NODE, lc).Desugar().Core()
	assert.False(t, node.Enabled(zap.WarnLevel))
	assert.True(t, node.Enabled(zap.ErrorLevel))
}

func TestModuleByName(t *testing.T) {
	m, ok := ModuleByName("trainer")
	require.True(t, ok)
	assert.Equal(t, MODULE_TRAINER, m)

	m, ok = ModuleByName(" Dataset ")
	require.True(t, ok)
	assert.Equal(t, MODULE_DATASET, m)

	_, ok = ModuleByName("elect")
	assert.False(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LEVEL_DEBUG, ParseLogLevel(" debug "))
	assert.Equal(t, LEVEL_WARN, ParseLogLevel("WARN"))
	assert.Equal(t, LEVEL_INFO, ParseLogLevel("chatty"))
}
