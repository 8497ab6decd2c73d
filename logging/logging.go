// Package logging builds the zap logger shared by the engine's subsystems.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the level and destinations of the logger.
type Options struct {
	// Level is a zap level name: debug, info, warn, error. Empty means info.
	Level string
	// File is written in addition to stderr when set.
	File string
	// Development switches to the console encoder with caller information.
	Development bool
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	outputs := []string{"stderr"}
	if opts.File != "" {
		outputs = append(outputs, opts.File)
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       opts.Development,
		Encoding:          "json",
		EncoderConfig:     zap.NewProductionEncoderConfig(),
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !opts.Development,
		DisableStacktrace: !opts.Development,
	}
	if opts.Development {
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Must is New for program start, panicking on a bad configuration.
func Must(opts Options) *zap.Logger {
	logger, err := New(opts)
	if err != nil {
		panic(err)
	}
	return logger
}
