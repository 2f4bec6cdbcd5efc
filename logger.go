package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide SugaredLogger. Lifecycle and connection events
// go through it; the per-tick hot path never logs.
var Log *zap.SugaredLogger

// InitLogger sets up zap writing to a rolling file.
func InitLogger(filePath string) error {
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}

	ws := zapcore.AddSync(lj)
	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zapcore.InfoLevel)
	Log = zap.New(core, zap.AddCaller()).Sugar()
	return nil
}

// SyncLogger flushes buffered log entries
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func init() {
	// Tests and tools that never call InitLogger still get a usable logger
	Log = zap.NewNop().Sugar()
}
