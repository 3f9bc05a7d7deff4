// Package logger provides a convenience function for constructing a logger
// for use in the application.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a Sugared Logger that writes JSON formatted output to
// stdout and provides a service name tag to every log entry.
func New(service string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := config.Build(zap.WithCaller(true), zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	logger := log.Sugar().With("service", service)

	return logger, nil
}
