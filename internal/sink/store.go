package sink

import (
	"context"
	"time"

	"github.com/danmuck/teleinfo/internal/protocol/frame"
)

// Point is one measurement sample.
type Point struct {
	Measurement string
	Tags        map[string]string
	Time        time.Time
	Fields      map[string]any
}

// Store is the time-series database client the Sink drives. Connectivity
// failures must satisfy errors.Is(err, ErrUnreachable).
type Store interface {
	ListDatabases(ctx context.Context) ([]string, error)
	CreateDatabase(ctx context.Context, name string) error
	SelectDatabase(ctx context.Context, name string) error
	WritePoints(ctx context.Context, points []Point) error
}

// Points converts a snapshot into one point per key, ordered by key. Times
// are UTC with second precision.
func Points(snap *frame.Snapshot, tags map[string]string) []Point {
	ts := snap.Timestamp.UTC().Truncate(time.Second)
	points := make([]Point, 0, snap.Len())
	for _, key := range snap.Keys() {
		points = append(points, Point{
			Measurement: key,
			Tags:        copyTags(tags),
			Time:        ts,
			Fields:      map[string]any{"value": snap.Values[key].Any()},
		})
	}
	return points
}

func copyTags(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
