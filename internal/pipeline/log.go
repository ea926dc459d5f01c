package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewLogger builds the --verbose logger every cmd/* tool shares: a
// development, console-encoded zap logger writing to stderr, so stdout
// stays a pure filter (§6 "Persisted state: None; all tools are pure
// filters"). verbose=false returns a no-op logger.
func NewLogger(verbose bool) (*zap.SugaredLogger, func(), error) {
	if !verbose {
		return zap.NewNop().Sugar(), func() {}, nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, func() {}, errors.Wrap(err, "building logger")
	}
	return logger.Sugar(), func() { _ = logger.Sync() }, nil
}
