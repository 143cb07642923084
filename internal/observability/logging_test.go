package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func logToFile(t *testing.T, format string, write func(*zap.Logger)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battle.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: format, Output: path})
	require.NoError(t, err)
	write(logger)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewLogger_JSONFields(t *testing.T) {
	out := logToFile(t, "json", func(l *zap.Logger) {
		l.Info("battle ended", zap.Int("rounds", 47))
	})
	assert.Contains(t, out, `"msg":"battle ended"`)
	assert.Contains(t, out, `"rounds":47`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestNewLogger_ConsoleIsCompact(t *testing.T) {
	out := logToFile(t, "console", func(l *zap.Logger) {
		l.Info("battle ended", zap.Int("rounds", 47))
	})
	line := strings.TrimSpace(out)
	assert.Contains(t, line, "INFO battle ended")
	assert.Contains(t, line, `{"rounds": 47}`)
	assert.NotContains(t, line, ".go:", "caller is omitted")
}

func TestNewLogger_KeepsEveryRoundLine(t *testing.T) {
	out := logToFile(t, "json", func(l *zap.Logger) {
		for range 250 {
			l.Debug("round complete")
		}
	})
	assert.Equal(t, 250, strings.Count(out, "round complete"))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		for _, format := range []string{"json", "console"} {
			logger, err := NewLogger(config.LoggingConfig{Level: level, Format: format})
			require.NoError(t, err, "level %q format %q", level, format)
			assert.NotNil(t, logger)
		}
	}
}
