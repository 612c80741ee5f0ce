package main

import (
	"os"
	"strings"

	"github.com/danmuck/teleinfo/internal/config"
	"github.com/spf13/pflag"
)

const defaultConfigPath = "/etc/teleinfo/teleinfod.toml"

type options struct {
	configPath  string
	device      string
	influxAddr  string
	metricsAddr string
	logLevel    string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("teleinfod", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+defaultConfigPath+" when present)")
	fs.StringVar(&opts.device, "device", "", "serial device, overrides serial.device")
	fs.StringVar(&opts.influxAddr, "influx-addr", "", "InfluxDB URL, overrides influx.addr")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "status/metrics listen address, overrides metrics_addr")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level, overrides log_level")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// loadConfig resolves the config file, then applies flag overrides.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	path := strings.TrimSpace(opts.configPath)
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if v := strings.TrimSpace(opts.device); v != "" {
		cfg.Serial.Device = v
	}
	if v := strings.TrimSpace(opts.influxAddr); v != "" {
		cfg.Influx.Addr = v
	}
	if v := strings.TrimSpace(opts.metricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(opts.logLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
