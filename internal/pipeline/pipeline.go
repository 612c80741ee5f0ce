// Package pipeline drives the serial line loop: raw lines go through the
// frame decoder and every completed snapshot goes to the sink. No single
// line or write failure stops the loop.
package pipeline

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/danmuck/teleinfo/internal/clock"
	"github.com/danmuck/teleinfo/internal/observability"
	"github.com/danmuck/teleinfo/internal/protocol"
	"github.com/danmuck/teleinfo/internal/protocol/frame"
	"github.com/danmuck/teleinfo/internal/serial"
	"github.com/rs/zerolog/log"
)

// LineReader yields raw lines. serial.ErrTimeout and empty lines mean no
// data yet; io.EOF ends a finite source.
type LineReader interface {
	ReadLine() (string, error)
}

// SnapshotWriter is the delivery side, implemented by *sink.Sink.
type SnapshotWriter interface {
	EnsureReady(ctx context.Context) error
	Write(ctx context.Context, snap *frame.Snapshot) error
	Connected() bool
}

type Config struct {
	// ReadErrorDelay is the pause after a failed read before trying again.
	ReadErrorDelay time.Duration
}

func DefaultConfig() Config {
	return Config{ReadErrorDelay: time.Second}
}

type Pipeline struct {
	src   LineReader
	dec   *frame.Decoder
	sink  SnapshotWriter
	clock clock.Clock
	cfg   Config

	frames      atomic.Uint64
	writeErrors atomic.Uint64
	lastFrame   atomic.Int64
	connected   atomic.Bool
	state       atomic.Int32
}

func New(src LineReader, dec *frame.Decoder, sink SnapshotWriter, c clock.Clock, cfg Config) *Pipeline {
	if c == nil {
		c = clock.Real()
	}
	if cfg.ReadErrorDelay <= 0 {
		cfg.ReadErrorDelay = DefaultConfig().ReadErrorDelay
	}
	p := &Pipeline{src: src, dec: dec, sink: sink, clock: c, cfg: cfg}
	p.state.Store(int32(dec.State()))
	return p
}

// Run blocks until the sink is ready, then decodes lines until ctx is done
// or the source reports io.EOF.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.sink.EnsureReady(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Error().Err(err).Msg("sink initialization failed, retrying on first write")
	}
	p.connected.Store(p.sink.Connected())
	log.Info().Msg("reading teleinfo stream")

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := p.src.ReadLine()
		switch {
		case err == nil:
		case errors.Is(err, serial.ErrTimeout):
			continue
		case errors.Is(err, io.EOF):
			log.Info().Uint64("frames", p.frames.Load()).Msg("stream ended")
			return nil
		default:
			log.Error().Err(err).Msg("read failed, resynchronizing")
			p.dec.Resync()
			p.state.Store(int32(p.dec.State()))
			select {
			case <-ctx.Done():
				return nil
			case <-p.clock.After(p.cfg.ReadErrorDelay):
			}
			continue
		}
		if line == "" {
			continue
		}
		p.ProcessLine(ctx, line)
	}
}

// ProcessLine feeds one line to the decoder and writes any snapshot it
// closes. Errors are logged, never returned.
func (p *Pipeline) ProcessLine(ctx context.Context, line string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("line", line).Msg("line processing failed")
		}
	}()

	skipped := p.dec.State() != frame.StateAccumulating || frame.IsMarker(line)
	snap, err := p.dec.Feed(line)
	p.state.Store(int32(p.dec.State()))
	observability.RecordDecodedLine(lineOutcome(skipped, err))
	if err != nil {
		logDecodeError(line, err)
	}
	if snap == nil {
		return
	}

	p.frames.Add(1)
	p.lastFrame.Store(snap.Timestamp.Unix())
	observability.RecordFrame()
	log.Debug().Object("frame", snap).Msg("frame decoded")

	if err := p.sink.Write(ctx, snap); err != nil {
		p.writeErrors.Add(1)
		log.Error().Err(err).Object("frame", snap).Msg("frame dropped")
	}
	p.connected.Store(p.sink.Connected())
}

// Status is safe to call from any goroutine.
func (p *Pipeline) Status() observability.Status {
	st := observability.Status{
		Connected:    p.connected.Load(),
		DecoderState: frame.State(p.state.Load()).String(),
		Frames:       p.frames.Load(),
		WriteErrors:  p.writeErrors.Load(),
	}
	if ts := p.lastFrame.Load(); ts > 0 {
		st.LastFrame = time.Unix(ts, 0).UTC()
	}
	return st
}

func lineOutcome(skipped bool, err error) string {
	switch {
	case skipped:
		return observability.LineSkipped
	case errors.Is(err, protocol.ErrFrameInterrupted):
		return observability.LineInterrupted
	case errors.Is(err, protocol.ErrMalformedGroup):
		return observability.LineRejected
	default:
		return observability.LineAccepted
	}
}

func logDecodeError(line string, err error) {
	for _, e := range splitErrors(err) {
		var gerr *frame.GroupError
		switch {
		case errors.As(e, &gerr):
			log.Warn().
				Err(gerr.Err).
				Str("line", line).
				Str("key", gerr.Key).
				Str("value", gerr.Value).
				Msg("group dropped")
		case errors.Is(e, protocol.ErrMissingIdentification):
			log.Info().Str("line", line).Msg("identification key absent at frame end")
		case errors.Is(e, protocol.ErrFrameInterrupted):
			log.Warn().Err(e).Str("line", line).Msg("frame interrupted, resynchronizing")
		default:
			log.Error().Err(e).Str("line", line).Msg("unexpected decode error")
		}
	}
}

func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
