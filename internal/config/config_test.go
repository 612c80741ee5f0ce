package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/teleinfo/internal/testutil/testlog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "teleinfod.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyS0" || cfg.Serial.BaudRate != 1200 || cfg.Serial.DataBits != 7 {
		t.Fatalf("unexpected serial config: %+v", cfg.Serial)
	}
	if cfg.Serial.ReadTimeout != time.Second {
		t.Fatalf("unexpected read timeout: %v", cfg.Serial.ReadTimeout)
	}
	if cfg.Influx.Addr != "http://localhost:8086" || cfg.Influx.Timeout != 10*time.Second {
		t.Fatalf("unexpected influx config: %+v", cfg.Influx)
	}
	if cfg.Sink.Database != "teleinfo" || cfg.Sink.Host != "raspberry" || cfg.Sink.Region != "linky" {
		t.Fatalf("unexpected sink config: %+v", cfg.Sink)
	}
	if cfg.Sink.RetryInterval != 5*time.Second {
		t.Fatalf("unexpected retry interval: %v", cfg.Sink.RetryInterval)
	}
	if cfg.MetricsAddr != "127.0.0.1:9108" || cfg.LogFile != "/var/log/teleinfo/releve.log" {
		t.Fatalf("unexpected ambient config: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 0 {
		t.Fatalf("unexpected cors origins: %v", cfg.CorsOrigins)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "")
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
cors_origins = [" http://localhost:3000 ", ""]

[serial]
device = "/dev/ttyAMA0"

[influx]
database = "linky"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyAMA0" || cfg.Serial.BaudRate != 1200 {
		t.Fatalf("unexpected serial config: %+v", cfg.Serial)
	}
	if cfg.Sink.Database != "linky" || cfg.Sink.Host != "raspberry" {
		t.Fatalf("unexpected sink config: %+v", cfg.Sink)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.CorsOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %v", cfg.CorsOrigins)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("metrics should be off by default")
	}
}

func TestLoadBadDuration(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[sink]
retry_interval = "abc"
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "sink.retry_interval") {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[serial]
parity = "even"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestValidate(t *testing.T) {
	testlog.Start(t)
	if err := Validate(Default()); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	cases := map[string]func(*Config){
		"device":    func(c *Config) { c.Serial.Device = "" },
		"baud":      func(c *Config) { c.Serial.BaudRate = 0 },
		"data bits": func(c *Config) { c.Serial.DataBits = 9 },
		"timeout":   func(c *Config) { c.Serial.ReadTimeout = 0 },
		"addr":      func(c *Config) { c.Influx.Addr = "localhost:8086" },
		"database":  func(c *Config) { c.Sink.Database = "" },
		"retry":     func(c *Config) { c.Sink.RetryInterval = -time.Second },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
