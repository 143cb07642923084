// Package observability provides structured logging for the simulator.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// consoleTimeLayout keeps console lines short; a battle or calibration run
// never spans days.
const consoleTimeLayout = "15:04:05.000"

// NewLogger creates a structured logger from the given logging configuration.
// Logs go to cfg.Output so that results printed on stdout stay clean. Sampling
// is off: a battle logs one line per round and every line is kept.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	enc, err := encoderConfig(cfg.Format)
	if err != nil {
		return nil, err
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          cfg.Format,
		EncoderConfig:     enc,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     cfg.Format == "console",
		DisableStacktrace: true,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// encoderConfig returns the encoder settings for format. JSON keeps zap's
// production keys; console output is compact for a terminal.
func encoderConfig(format string) (zapcore.EncoderConfig, error) {
	switch format {
	case "json":
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeDuration = zapcore.MillisDurationEncoder
		return enc, nil
	case "console":
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout(consoleTimeLayout)
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		enc.EncodeDuration = zapcore.StringDurationEncoder
		enc.CallerKey = zapcore.OmitKey
		enc.ConsoleSeparator = " "
		return enc, nil
	default:
		return zapcore.EncoderConfig{}, fmt.Errorf("unknown log format %q", format)
	}
}
