package logging

import (
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log formats.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatZap    = "zap"
	FormatZapDev = "zap-dev"
)

// New builds a Logger for the given format and minimum level. slog formats
// write to w; zap formats use zap's own sinks.
func New(format, level string, w io.Writer) (Logger, error) {
	switch format {
	case "", FormatJSON, FormatText:
		lvl, err := parseSlogLevel(level)
		if err != nil {
			return nil, err
		}
		return NewSlogLogger(slog.New(newSlogHandler(format, w, lvl))), nil
	case FormatZap, FormatZapDev:
		lvl := zapcore.InfoLevel
		if level != "" {
			parsed, err := zapcore.ParseLevel(level)
			if err != nil {
				return nil, fmt.Errorf("unknown log level %q", level)
			}
			lvl = parsed
		}

		cfg := zap.NewProductionConfig()
		if format == FormatZapDev {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)

		l, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("zap init: %w", err)
		}
		return NewZapLogger(l), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
