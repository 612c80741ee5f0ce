package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/danmuck/teleinfo/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "TELEINFO_LOG_LEVEL"
	EnvLogTimestamp = "TELEINFO_LOG_TIMESTAMP"
	EnvLogNoColor   = "TELEINFO_LOG_NOCOLOR"
	EnvLogFile      = "TELEINFO_LOG_FILE"
)

const appName = "teleinfo"

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logger setup. File empty means console output.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	File      string
}

var (
	configureOnce sync.Once
	configureErr  error
)

// ConfigureRuntime sets up the process logger. level and file come from the
// config file and lose to the TELEINFO_LOG_* environment.
func ConfigureRuntime(level, file string) error {
	configureOnce.Do(func() {
		cfg := DefaultConfig(ProfileRuntime)
		if lvl, ok := ParseLevel(level); ok {
			cfg.Level = lvl
		}
		cfg.File = strings.TrimSpace(file)
		applyEnvOverrides(&cfg)
		configureErr = apply(cfg)
	})
	return configureErr
}

func ConfigureTests() {
	configureOnce.Do(func() {
		cfg := DefaultConfig(ProfileTest)
		applyEnvOverrides(&cfg)
		configureErr = apply(cfg)
	})
}

func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, Timestamp: false}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func apply(cfg Config) error {
	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(cfg.Level)
	log.Logger = observability.InitLogger(appName, out, cfg.Timestamp)
	return nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.File == "" {
		return zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor, TimeFormat: "2006-01-02T15:04:05Z07:00"}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return f, nil
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.File = v
	}
}

// ParseLevel maps a user supplied level name onto a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
