package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const metricsPath = "/metrics"

// Status is the runtime view served on /health.
type Status struct {
	Connected    bool      `json:"connected"`
	DecoderState string    `json:"decoder_state"`
	Frames       uint64    `json:"frames"`
	WriteErrors  uint64    `json:"write_errors"`
	LastFrame    time.Time `json:"last_frame"`
}

// StatusFunc must be safe to call from the HTTP goroutine.
type StatusFunc func() Status

// NewRouter serves /health and /metrics.
func NewRouter(node string, logger zerolog.Logger, status StatusFunc, corsOrigins []string) *gin.Engine {
	RegisterMetrics()
	started := time.Now()

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger, metricsPath), RequestMetricsMiddleware(node))
	if len(corsOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = corsOrigins
		router.Use(cors.New(cfg))
	}

	router.GET("/health", func(c *gin.Context) {
		st := status()
		code := http.StatusOK
		state := "ok"
		if !st.Connected {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{
			"status":        state,
			"service":       node,
			"uptime":        time.Since(started).Round(time.Second).String(),
			"connected":     st.Connected,
			"decoder_state": st.DecoderState,
			"frames":        st.Frames,
			"write_errors":  st.WriteErrors,
			"last_frame":    st.LastFrame,
		})
	})
	router.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	return router
}

// Serve runs handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
