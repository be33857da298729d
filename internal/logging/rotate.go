package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the process logs.
type Options struct {
	// Path of the log file. Empty disables logging.
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	JSON       bool
	Verbose    bool
}

// New builds a logger writing to a size-rotated file. The returned closer
// flushes buffered entries and closes the file.
func New(opts Options) (*zap.Logger, func(), error) {
	if strings.TrimSpace(opts.Path) == "" {
		return zap.NewNop(), func() {}, nil
	}
	sink := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zapcore.InfoLevel
	if opts.Verbose || DevMode {
		level = zapcore.DebugLevel
	}
	logger := zap.New(zapcore.NewCore(enc, zapcore.AddSync(sink), level))
	closer := func() {
		_ = logger.Sync()
		_ = sink.Close()
	}
	return logger, closer, nil
}
