package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Log is the process-wide sugared logger. It discards everything until Init
// or Set is called.
var Log = log.Sugar()

// Init sends warnings and errors to stderr and everything from level up to
// info to stdout, both as JSON.
func Init(level string) error {
	globalLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.WarnLevel && lvl >= globalLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= globalLevel && lvl < zapcore.WarnLevel
	})
	consoleInfos := zapcore.Lock(os.Stdout)
	consoleErrors := zapcore.Lock(os.Stderr)

	ecfg := zap.NewProductionEncoderConfig()
	ecfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zapcore.NewJSONEncoder(ecfg)
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, consoleErrors, highPriority),
		zapcore.NewCore(consoleEncoder, consoleInfos, lowPriority),
	)

	Set(zap.New(core))
	zap.RedirectStdLog(log)
	return nil
}

// Set replaces the process-wide logger.
func Set(l *zap.Logger) {
	log = l
	Log = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = log.Sync()
}
