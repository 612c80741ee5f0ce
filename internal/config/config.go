package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/teleinfo/internal/serial"
	"github.com/danmuck/teleinfo/internal/sink"
	"github.com/danmuck/teleinfo/internal/sink/influx"
)

// Config is the resolved teleinfod configuration.
type Config struct {
	Serial      serial.Config
	Influx      influx.Config
	Sink        sink.Config
	MetricsAddr string
	CorsOrigins []string
	LogLevel    string
	LogFile     string
}

type fileConfig struct {
	Serial      fileSerial `toml:"serial"`
	Influx      fileInflux `toml:"influx"`
	Sink        fileSink   `toml:"sink"`
	MetricsAddr string     `toml:"metrics_addr"`
	CorsOrigins []string   `toml:"cors_origins"`
	LogLevel    string     `toml:"log_level"`
	LogFile     string     `toml:"log_file"`
}

type fileSerial struct {
	Device      string `toml:"device"`
	Baud        int    `toml:"baud"`
	DataBits    int    `toml:"data_bits"`
	ReadTimeout string `toml:"read_timeout"`
}

type fileInflux struct {
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	Timeout  string `toml:"timeout"`
}

type fileSink struct {
	Host          string `toml:"host"`
	Region        string `toml:"region"`
	RetryInterval string `toml:"retry_interval"`
}

func Default() Config {
	return Config{
		Serial:   serial.DefaultConfig(),
		Influx:   influx.DefaultConfig(),
		Sink:     sink.DefaultConfig(),
		LogLevel: "info",
	}
}

// Load reads path on top of Default and validates the result. Keys absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("serial", "device") {
		cfg.Serial.Device = strings.TrimSpace(raw.Serial.Device)
	}
	if meta.IsDefined("serial", "baud") {
		cfg.Serial.BaudRate = raw.Serial.Baud
	}
	if meta.IsDefined("serial", "data_bits") {
		cfg.Serial.DataBits = raw.Serial.DataBits
	}
	if meta.IsDefined("serial", "read_timeout") {
		d, err := parseDuration("serial.read_timeout", raw.Serial.ReadTimeout)
		if err != nil {
			return Config{}, err
		}
		cfg.Serial.ReadTimeout = d
	}

	if meta.IsDefined("influx", "addr") {
		cfg.Influx.Addr = strings.TrimSpace(raw.Influx.Addr)
	}
	if meta.IsDefined("influx", "username") {
		cfg.Influx.Username = raw.Influx.Username
	}
	if meta.IsDefined("influx", "password") {
		cfg.Influx.Password = raw.Influx.Password
	}
	if meta.IsDefined("influx", "database") {
		cfg.Sink.Database = strings.TrimSpace(raw.Influx.Database)
	}
	if meta.IsDefined("influx", "timeout") {
		d, err := parseDuration("influx.timeout", raw.Influx.Timeout)
		if err != nil {
			return Config{}, err
		}
		cfg.Influx.Timeout = d
	}

	if meta.IsDefined("sink", "host") {
		cfg.Sink.Host = strings.TrimSpace(raw.Sink.Host)
	}
	if meta.IsDefined("sink", "region") {
		cfg.Sink.Region = strings.TrimSpace(raw.Sink.Region)
	}
	if meta.IsDefined("sink", "retry_interval") {
		d, err := parseDuration("sink.retry_interval", raw.Sink.RetryInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.Sink.RetryInterval = d
	}

	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeList(raw.CorsOrigins)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Serial.Device) == "" {
		return fmt.Errorf("serial.device is required")
	}
	if cfg.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud must be positive")
	}
	if cfg.Serial.DataBits < 5 || cfg.Serial.DataBits > 8 {
		return fmt.Errorf("serial.data_bits must be between 5 and 8")
	}
	if cfg.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("serial.read_timeout must be positive")
	}
	u, err := url.Parse(cfg.Influx.Addr)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("influx.addr must be an http(s) URL: %q", cfg.Influx.Addr)
	}
	if strings.TrimSpace(cfg.Sink.Database) == "" {
		return fmt.Errorf("influx.database is required")
	}
	if cfg.Sink.RetryInterval <= 0 {
		return fmt.Errorf("sink.retry_interval must be positive")
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
