package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a console logger that writes errors to stderr and lower
// levels to stdout. Pass stderr as stdout when results go to standard output.
func newLogger(level string, stdout, stderr io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, usageErrorf("invalid log level %q", level)
	}

	encCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	enc := zapcore.NewConsoleEncoder(encCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= lvl && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= lvl && l >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(stdout), low),
		zapcore.NewCore(enc, zapcore.AddSync(stderr), high),
	)
	return zap.New(core), nil
}

// commandLogger builds the logger for a command writing results to output.
func commandLogger(output string, stdout, stderr io.Writer, level string) (*zap.Logger, error) {
	if output == "-" {
		stdout = stderr
	}
	logger, err := newLogger(level, stdout, stderr)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
