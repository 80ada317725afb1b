package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

//nolint:gochecknoglobals
var Group = slog.Group

const (
	appKey    = "app"
	loggerKey = "logger"
)

// LoggerConfig holds the logging settings read from the environment.
type LoggerConfig struct {
	// Output is "stdout", "stderr", "discard" or a file path.
	Output string `env:"OUTPUT" default:"stderr"`
	// Level is the global minimum level.
	Level string `env:"LEVEL" default:"info"`
	// Filter holds per-logger overrides as "name:level,name:level".
	Filter string `env:"FILTER" default:""`
	// JSON switches from the console format to slog's JSON handler.
	JSON bool `env:"JSON" default:"false"`

	// Writer overrides Output when set.
	Writer io.Writer
}

type state struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	appName string
	cfg     LoggerConfig
	out     io.Writer
	level   slog.LevelVar
	filter  map[string]Level
}

//nolint:gochecknoglobals
var global = &state{}

// Configure installs the global logging configuration. Loggers created by
// GetLogger before Configure is called discard their output.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	out, err := openOutput(cfg)
	if err != nil {
		return err
	}

	global.mu.Lock()
	global.appName = appName
	global.cfg = cfg
	global.out = out
	global.filter = parseFilter(cfg.Filter)
	global.level.Set(ParseLevel(cfg.Level, LevelInfo))
	global.mu.Unlock()

	slog.SetLogLoggerLevel(global.level.Level())

	GetLogger("infra.logging").DebugContext(ctx, "logging configured",
		slog.Group("config",
			"output", cfg.Output,
			"level", cfg.Level,
			"filter", cfg.Filter,
			"json", cfg.JSON,
		))

	return nil
}

func openOutput(cfg LoggerConfig) (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}

	switch cfg.Output {
	case "", "discard":
		return io.Discard, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

// GetLogger returns a logger tagged with the given dotted name, e.g. "svc.jobsvc".
func GetLogger(name string) Logger {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.out == nil || global.out == io.Discard {
		return NewNopLogger()
	}

	var handler Handler

	if global.cfg.JSON {
		handler = slog.NewJSONHandler(global.out, &slog.HandlerOptions{
			AddSource: true,
			Level:     &global.level,
		})
	} else {
		handler = &ConsoleHandler{
			Output:    global.out,
			Level:     &global.level,
			PkgLevels: global.filter,
			mu:        &global.writeMu,
		}
	}

	logger := slog.New(NewContextHandler(handler))

	if global.appName != "" {
		logger = logger.With(appKey, global.appName)
	}

	return logger.With(loggerKey, name)
}

// GetLogLogger adapts logger to a *log.Logger for APIs like http.Server.ErrorLog.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.With("stdlog", true).Handler(), level)
}

// ParseLevel maps "debug", "info", "warn" and "error" to their slog level,
// returning fallback for anything else.
func ParseLevel(s string, fallback Level) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return fallback
	}
}

func parseFilter(filter string) map[string]Level {
	levels := make(map[string]Level)

	for _, entry := range strings.Split(filter, ",") {
		name, level, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}

		levels[strings.TrimSpace(name)] = ParseLevel(level, LevelDebug)
	}

	return levels
}
