// Package logger builds the debug logger. Detection output goes to
// stdout; everything the logger emits goes to stderr so piped consumers
// never see it.
package logger

import (
	"go.uber.org/zap"
)

// New returns a development-config zap logger writing to stderr when
// debug is set, and a no-op logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
