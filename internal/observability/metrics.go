package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decoded line outcomes.
const (
	LineAccepted    = "accepted"
	LineRejected    = "rejected"
	LineSkipped     = "skipped"
	LineInterrupted = "interrupted"
)

// Sink write outcomes.
const (
	WriteOK     = "ok"
	WriteFailed = "error"
)

var (
	registerOnce sync.Once

	decoderLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teleinfo",
			Subsystem: "decoder",
			Name:      "lines_total",
			Help:      "Raw lines consumed by the frame decoder.",
		},
		[]string{"outcome"},
	)
	decoderFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "teleinfo",
			Subsystem: "decoder",
			Name:      "frames_total",
			Help:      "Complete frames emitted by the frame decoder.",
		},
	)
	sinkWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teleinfo",
			Subsystem: "sink",
			Name:      "writes_total",
			Help:      "Snapshot batches written to the store.",
		},
		[]string{"outcome"},
	)
	sinkPoints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "teleinfo",
			Subsystem: "sink",
			Name:      "points_total",
			Help:      "Points submitted to the store.",
		},
	)
	sinkWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "teleinfo",
			Subsystem: "sink",
			Name:      "write_duration_seconds",
			Help:      "Store write duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	sinkConnectAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "teleinfo",
			Subsystem: "sink",
			Name:      "connect_attempts_total",
			Help:      "Database initialization attempts.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teleinfo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teleinfo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			decoderLines, decoderFrames,
			sinkWrites, sinkPoints, sinkWriteDuration, sinkConnectAttempts,
			httpRequests, httpDuration,
		)
	})
}

func RecordDecodedLine(outcome string) {
	RegisterMetrics()
	decoderLines.WithLabelValues(outcome).Inc()
}

func RecordFrame() {
	RegisterMetrics()
	decoderFrames.Inc()
}

func RecordSinkWrite(success bool, points int, duration time.Duration) {
	RegisterMetrics()
	outcome := WriteOK
	if !success {
		outcome = WriteFailed
	}
	sinkWrites.WithLabelValues(outcome).Inc()
	if success {
		sinkPoints.Add(float64(points))
	}
	sinkWriteDuration.Observe(duration.Seconds())
}

func RecordSinkConnectAttempt() {
	RegisterMetrics()
	sinkConnectAttempts.Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
