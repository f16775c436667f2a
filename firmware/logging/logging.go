// Package logging builds zap loggers that write through the HAL log sink
// (UART on the device, stdout on the host).
package logging

import (
	"bytes"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"therapy/hal"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a zap level.
// Anything else is info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a logger writing to out. format is "json" or "console"
// (default "console"); service, when set, is attached to every entry.
func New(out hal.Logger, level, format, service string) *zap.Logger {
	if out == nil {
		return zap.NewNop()
	}

	var enc zapcore.Encoder
	if format == "json" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(lineSink{out: out}), zap.NewAtomicLevelAt(ParseLevel(level)))
	log := zap.New(core)
	if service != "" {
		log = log.With(zap.String("service_name", service))
	}
	return log
}

// lineSink adapts hal.Logger to zapcore.WriteSyncer. zap writes one encoded
// entry per call, terminated by a newline.
type lineSink struct {
	out hal.Logger
}

func (s lineSink) Write(p []byte) (int, error) {
	n := len(p)
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte{'\n'}) {
		s.out.WriteLineBytes(line)
	}
	return n, nil
}

func (s lineSink) Sync() error { return nil }
