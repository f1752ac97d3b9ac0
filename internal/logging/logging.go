// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger writing JSON to stderr and optionally appending to
// logFile. It is installed as the zap global so zap.L() works in packages
// without an injected logger. The returned cleanup syncs and closes the log
// file; callers must defer it.
func New(level, logFile string) (*zap.Logger, func(), error) {
	lvl := parseLevel(level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)}
	closeFile := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), lvl))
		closeFile = func() { _ = f.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	restore := zap.ReplaceGlobals(logger)
	cleanup := func() {
		_ = logger.Sync()
		restore()
		closeFile()
	}
	return logger, cleanup, nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
