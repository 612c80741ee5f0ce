// Package influx adapts an InfluxDB 1.x HTTP endpoint to sink.Store.
package influx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/danmuck/teleinfo/internal/sink"
)

var ErrNoDatabase = errors.New("influx: no database selected")

type Config struct {
	Addr     string
	Username string
	Password string
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:    "http://localhost:8086",
		Timeout: 10 * time.Second,
	}
}

// Store talks to InfluxDB over its HTTP API. The selected database is kept
// client side and applied to every write.
type Store struct {
	client   client.Client
	database string
}

func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("influx: new client: %w", err)
	}
	return &Store{client: c}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	resp, err := s.query(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, result := range resp.Results {
		for _, row := range result.Series {
			for _, values := range row.Values {
				if len(values) == 0 {
					continue
				}
				if name, ok := values[0].(string); ok {
					names = append(names, name)
				}
			}
		}
	}
	return names, nil
}

func (s *Store) CreateDatabase(ctx context.Context, name string) error {
	_, err := s.query(ctx, "CREATE DATABASE "+quoteIdent(name))
	return err
}

func (s *Store) SelectDatabase(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return ErrNoDatabase
	}
	s.database = name
	return nil
}

func (s *Store) WritePoints(ctx context.Context, points []sink.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.database == "" {
		return ErrNoDatabase
	}
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("influx: batch: %w", err)
	}
	for _, p := range points {
		pt, err := client.NewPoint(p.Measurement, p.Tags, p.Fields, p.Time)
		if err != nil {
			return fmt.Errorf("influx: point %s: %w", p.Measurement, err)
		}
		bp.AddPoint(pt)
	}
	return classify("write", s.client.Write(bp))
}

func (s *Store) query(ctx context.Context, command string) (*client.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := s.client.Query(client.NewQuery(command, "", ""))
	if err != nil {
		return nil, classify(command, err)
	}
	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("influx: %s: %w", command, err)
	}
	return resp, nil
}

// classify marks transport failures as sink.ErrUnreachable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: influx %s: %v", sink.ErrUnreachable, op, err)
	}
	return fmt.Errorf("influx: %s: %w", op, err)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}
