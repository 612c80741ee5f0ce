// Package frame assembles Teleinfo groups into snapshots.
package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/teleinfo/internal/clock"
	"github.com/danmuck/teleinfo/internal/protocol"
)

// State tracks the decoder's position relative to frame boundaries.
type State int

const (
	// StateSeeking discards lines until one carries STX.
	StateSeeking State = iota
	// StateSkipping discards the single line that follows the first STX.
	StateSkipping
	// StateAccumulating stores groups and emits a snapshot on every ETX.
	StateAccumulating
)

func (s State) String() string {
	switch s {
	case StateSeeking:
		return "seeking"
	case StateSkipping:
		return "skipping"
	case StateAccumulating:
		return "accumulating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decoder turns raw lines into snapshots. It is not safe for concurrent use.
type Decoder struct {
	clock   clock.Clock
	state   State
	current map[string]Value
}

func NewDecoder(c clock.Clock) *Decoder {
	if c == nil {
		c = clock.Real()
	}
	return &Decoder{
		clock:   c,
		state:   StateSeeking,
		current: make(map[string]Value),
	}
}

func (d *Decoder) State() State {
	return d.state
}

// Pending returns the number of groups stored for the frame in progress.
func (d *Decoder) Pending() int {
	return len(d.current)
}

// Resync drops the frame in progress and waits for the next STX.
func (d *Decoder) Resync() {
	d.state = StateSeeking
	d.current = make(map[string]Value)
}

// Feed consumes one raw line, terminator included.
//
// A snapshot is returned when the line carries ETX. The returned error
// describes the line's group (a *GroupError) or the frame close
// (protocol.ErrMissingIdentification); neither prevents emission, so callers
// must check the snapshot even when err is non-nil. Lines consumed while
// synchronizing return (nil, nil).
func (d *Decoder) Feed(line string) (*Snapshot, error) {
	switch d.state {
	case StateSeeking:
		if strings.IndexByte(line, protocol.STX) >= 0 {
			d.state = StateSkipping
		}
		return nil, nil
	case StateSkipping:
		d.state = StateAccumulating
		return nil, nil
	}

	if strings.IndexByte(line, protocol.EOT) >= 0 {
		dropped := len(d.current)
		d.Resync()
		return nil, fmt.Errorf("%w: %d groups dropped", protocol.ErrFrameInterrupted, dropped)
	}

	var errs []error
	if !IsMarker(line) {
		if err := d.accept(line); err != nil {
			errs = append(errs, err)
		}
	}
	if strings.IndexByte(line, protocol.ETX) < 0 {
		return nil, errors.Join(errs...)
	}

	snap, err := d.close()
	if err != nil {
		errs = append(errs, err)
	}
	return snap, errors.Join(errs...)
}

// IsMarker reports whether line carries only STX/ETX control bytes and its
// terminator, as the bare STX line some meters send before a frame.
func IsMarker(line string) bool {
	trimmed := strings.TrimRight(line, "\r\n")
	return trimmed != "" && strings.Trim(trimmed, protocol.FrameBoundary) == ""
}

func (d *Decoder) accept(line string) error {
	g, err := ParseGroup(line)
	if err != nil {
		return err
	}
	v, err := g.Typed()
	if err != nil {
		var gerr *GroupError
		if errors.As(err, &gerr) {
			gerr.Line = line
		}
		return err
	}
	d.current[g.Key] = v
	return nil
}

func (d *Decoder) close() (*Snapshot, error) {
	snap := &Snapshot{
		Values:    d.current,
		Timestamp: d.clock.Now(),
	}
	d.current = make(map[string]Value)

	if _, ok := snap.Values[protocol.IdentificationKey]; !ok {
		return snap, protocol.ErrMissingIdentification
	}
	delete(snap.Values, protocol.IdentificationKey)
	return snap, nil
}
