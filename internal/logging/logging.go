package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

// Init installs a stderr text handler as the process default logger.
func Init(level string) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name to a slog level. Unknown names fall back
// to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup configures the default logger from the logging config: a console
// handler on stderr, a timestamped log file under LogDir, or both. The
// returned closer flushes and closes the log file, if any.
func Setup(cfg config.LoggingConfig) (func() error, error) {
	var writers []io.Writer
	closer := func() error { return nil }

	if cfg.ConsoleLogging {
		writers = append(writers, os.Stderr)
	}

	if cfg.FileLogging {
		logDir := cfg.LogDir
		if logDir == "" {
			logDir = "logs"
		}
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		name := fmt.Sprintf("pipeline_%s.log", time.Now().Format("20060102_150405"))
		file, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
		closer = file.Close
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})
	slog.SetDefault(slog.New(handler))

	return closer, nil
}
