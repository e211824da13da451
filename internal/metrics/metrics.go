// Package metrics holds the Prometheus collectors of the mosaic server and
// the optional /metrics listener.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "geomosaic_tool_duration_seconds",
		Help: "Duration of tool calls.",
	}, []string{"tool"})
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geomosaic_tool_calls_total",
		Help: "Number of tool calls by outcome.",
	}, []string{"tool", "outcome"})

	// StatisticsPasses counts full band min/max scans.
	StatisticsPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geomosaic_statistics_passes_total",
		Help: "Number of band statistics computations.",
	})

	// RenderedPixels counts RGBA pixels produced by window renders.
	RenderedPixels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geomosaic_rendered_pixels_total",
		Help: "Number of RGBA pixels rendered.",
	})

	// CoordinateLookups counts world-coordinate queries by source.
	CoordinateLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geomosaic_coordinate_lookups_total",
		Help: "Number of pixel to world coordinate lookups.",
	}, []string{"source"})

	// IngestStatements counts INSERT statements issued by elevation ingestion.
	IngestStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geomosaic_ingest_statements_total",
		Help: "Number of elevation ingestion statements.",
	})
)

// ObserveTool records the duration and outcome of one tool call started at
// start.
func ObserveTool(tool string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	toolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until the listener fails. It returns nil
// when addr is empty.
func Serve(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	err := http.ListenAndServe(addr, mux)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
