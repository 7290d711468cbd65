// Package logger provides a convenience function to constructing a logger
// for use. This is required not just for applications but for testing.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a Sugared Logger that writes to stdout and
// provides human readable timestamps.
func New(service string, outputPaths ...string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()

	config.OutputPaths = []string{"stdout"}
	if outputPaths != nil {
		config.OutputPaths = outputPaths
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]any{
		"service": service,
	}

	log, err := config.Build(zap.WithCaller(true))
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

// Rotation describes a log file that rolls over once it reaches a size.
type Rotation struct {
	FilePath    string
	ThresholdKB int64
	MaxRolls    int
}

// NewWithRotation constructs a Sugared Logger that writes to stdout and to
// a rotating log file. The returned function closes the log file.
func NewWithRotation(service string, rot Rotation) (*zap.SugaredLogger, func() error, error) {
	if dir := filepath.Dir(rot.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	r, err := rotator.New(rot.FilePath, rot.ThresholdKB, false, rot.MaxRolls)
	if err != nil {
		return nil, nil, fmt.Errorf("creating file rotator: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stdout), zapcore.AddSync(r)),
		zap.InfoLevel,
	)

	log := zap.New(core, zap.WithCaller(true)).With(zap.String("service", service))

	return log.Sugar(), r.Close, nil
}
