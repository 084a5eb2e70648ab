// Package logger builds the zap loggers used across folio. Commands get
// colorized console output; the server can opt into JSON for log shipping.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger from the given options. Without options it
// logs Info and above to stdout with the console encoder.
func New(opts ...Option) *zap.Logger {
	cfg := config{level: zapcore.InfoLevel}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.writers) == 0 {
		cfg.writers = []io.Writer{os.Stdout}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.json {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(cfg.writers))
	for _, w := range cfg.writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(syncers...),
		cfg.level,
	)

	return zap.New(core, zap.AddCaller())
}
