// Package http exposes an optional Prometheus metrics listener for long
// extraction and resolution runs.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Metrics holds the instrumentation for the extraction pipeline. It
// satisfies the extract.Recorder and resolve.Recorder interfaces.
type Metrics struct {
	TracksExtracted *prometheus.CounterVec
	RowsDropped     prometheus.Counter
	ScrollPasses    prometheus.Counter
	Resolved        *prometheus.CounterVec
	ResolveTime     prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TracksExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracklift_tracks_extracted_total",
				Help: "Total number of tracks extracted per source platform",
			},
			[]string{"platform"},
		),
		RowsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tracklift_rows_dropped_total",
				Help: "Total number of partially rendered rows dropped",
			},
		),
		ScrollPasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tracklift_scroll_passes_total",
				Help: "Total number of scroll-convergence passes",
			},
		),
		Resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracklift_resolved_total",
				Help: "Total number of resolution attempts by outcome",
			},
			[]string{"status"},
		),
		ResolveTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracklift_resolve_duration_seconds",
				Help:    "Time spent resolving a single track",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	prometheus.MustRegister(
		m.TracksExtracted,
		m.RowsDropped,
		m.ScrollPasses,
		m.Resolved,
		m.ResolveTime,
	)

	return m
}

func (m *Metrics) RecordExtracted(platform string, count int) {
	m.TracksExtracted.WithLabelValues(platform).Add(float64(count))
}

func (m *Metrics) RecordRowDropped() {
	m.RowsDropped.Inc()
}

func (m *Metrics) RecordScrollPass() {
	m.ScrollPasses.Inc()
}

func (m *Metrics) RecordResolved(status string) {
	m.Resolved.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveResolveDuration(d time.Duration) {
	m.ResolveTime.Observe(d.Seconds())
}

// Server serves /metrics and /healthz.
type Server struct {
	logger *zap.Logger
	server *http.Server
}

func NewServer(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"tracklift"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting metrics server", zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down metrics server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown metrics server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("metrics server failed: %w", err)
	}

	return nil
}
