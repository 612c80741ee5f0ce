package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/teleinfo/internal/clock"
	"github.com/danmuck/teleinfo/internal/observability"
	"github.com/danmuck/teleinfo/internal/protocol/frame"
	"github.com/danmuck/teleinfo/internal/retry"
	"github.com/rs/zerolog/log"
)

// Config identifies the target database and the tags stamped on every
// point.
type Config struct {
	Database      string
	Host          string
	Region        string
	RetryInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Database:      "teleinfo",
		Host:          "raspberry",
		Region:        "linky",
		RetryInterval: 5 * time.Second,
	}
}

// Sink writes snapshots to a Store, (re)initializing the database lazily.
// It is not safe for concurrent use.
type Sink struct {
	store     Store
	cfg       Config
	clock     clock.Clock
	tags      map[string]string
	connected bool
}

func New(store Store, cfg Config, c clock.Clock) (*Sink, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, ErrDatabaseRequired
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultConfig().RetryInterval
	}
	if c == nil {
		c = clock.Real()
	}
	return &Sink{
		store: store,
		cfg:   cfg,
		clock: c,
		tags:  map[string]string{"host": cfg.Host, "region": cfg.Region},
	}, nil
}

// Connected reports whether the database was initialized and no
// connectivity failure was seen since.
func (s *Sink) Connected() bool {
	return s.connected
}

// EnsureReady creates and selects the database, retrying connectivity
// failures forever at the configured interval. Other store errors are
// returned. Only ctx cancellation ends the wait.
func (s *Sink) EnsureReady(ctx context.Context) error {
	if s.connected {
		return nil
	}
	err := retry.Do(ctx, retry.Policy{
		Interval:  s.cfg.RetryInterval,
		Clock:     s.clock,
		Retryable: IsUnreachable,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Info().
				Int("attempt", attempt).
				Err(err).
				Msgf("store is not reachable, waiting %s to retry", delay)
		},
	}, s.connect)
	if err != nil {
		return err
	}
	s.connected = true
	return nil
}

func (s *Sink) connect(ctx context.Context) error {
	db := s.cfg.Database
	observability.RecordSinkConnectAttempt()
	log.Info().Str("database", db).Msg("checking database")
	names, err := s.store.ListDatabases(ctx)
	if err != nil {
		return err
	}
	if !contains(names, db) {
		log.Info().Str("database", db).Msg("creating database")
		if err := s.store.CreateDatabase(ctx, db); err != nil {
			return err
		}
		log.Info().Str("database", db).Msg("database created")
	}
	if err := s.store.SelectDatabase(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", db).Msg("connected")
	return nil
}

// Write sends every reading of snap as one batch. Failures are returned to
// the caller and never retried here; a connectivity failure drops the
// connection so the next Write re-initializes it.
func (s *Sink) Write(ctx context.Context, snap *frame.Snapshot) error {
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}
	points := Points(snap, s.tags)
	if len(points) == 0 {
		return nil
	}

	start := s.clock.Now()
	err := s.store.WritePoints(ctx, points)
	observability.RecordSinkWrite(err == nil, len(points), s.clock.Now().Sub(start))
	if err != nil {
		if IsUnreachable(err) {
			s.connected = false
		}
		return fmt.Errorf("%w: %d points at %s: %w", ErrWriteFailed, len(points), snap.Timestamp.UTC().Format(time.RFC3339), err)
	}
	return nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
