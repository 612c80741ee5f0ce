package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/teleinfo/internal/clock"
	"github.com/danmuck/teleinfo/internal/logging"
	"github.com/danmuck/teleinfo/internal/observability"
	"github.com/danmuck/teleinfo/internal/pipeline"
	"github.com/danmuck/teleinfo/internal/protocol/frame"
	"github.com/danmuck/teleinfo/internal/serial"
	"github.com/danmuck/teleinfo/internal/sink"
	"github.com/danmuck/teleinfo/internal/sink/influx"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "teleinfod: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := logging.ConfigureRuntime(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	log.Info().Str("device", cfg.Serial.Device).Str("influx", cfg.Influx.Addr).Msg("teleinfo starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := influx.New(cfg.Influx)
	if err != nil {
		return err
	}
	defer store.Close()

	clk := clock.Real()
	sk, err := sink.New(store, cfg.Sink, clk)
	if err != nil {
		return err
	}

	port, err := serial.Open(cfg.Serial)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Info().Str("device", cfg.Serial.Device).Msg("serial port open")

	p := pipeline.New(serial.NewLineSource(port), frame.NewDecoder(clk), sk, clk, pipeline.DefaultConfig())

	if cfg.MetricsAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		router := observability.NewRouter("teleinfod", log.Logger, p.Status, cfg.CorsOrigins)
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("status server listening")
			if err := observability.Serve(ctx, cfg.MetricsAddr, router); err != nil {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	err = p.Run(ctx)
	log.Info().Msg("teleinfo stopped")
	return err
}
