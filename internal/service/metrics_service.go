package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes used as metric labels.
const (
	OutcomeComplete       = "complete"
	OutcomePartial        = "partial"
	OutcomeMissingTeacher = "missing_teacher"
	OutcomeInvalid        = "invalid"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	generationTotal    *prometheus.CounterVec
	generationDuration prometheus.Histogram
	subjectsPlaced     prometheus.Counter
	subjectsUnplaced   prometheus.Counter
	dbQueryDuration    *prometheus.HistogramVec

	requestCount      uint64
	generationCount   uint64
	placedCount       uint64
	unplacedCount     uint64
	generationNanos   uint64
	dbQueryCount      uint64
	dbQueryNanosTotal uint64
}

// MetricsSnapshot summarises counters since process start.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	GenerationsTotal         uint64    `json:"generationsTotal"`
	SubjectsPlaced           uint64    `json:"subjectsPlaced"`
	SubjectsUnplaced         uint64    `json:"subjectsUnplaced"`
	AverageGenerationMs      float64   `json:"averageGenerationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generations_total",
		Help: "Timetable generation runs by outcome",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Wall time of a timetable generation run",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	subjectsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_subjects_placed_total",
		Help: "Subjects that received a slot",
	})

	subjectsUnplaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_subjects_unplaced_total",
		Help: "Subjects left without a slot",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationTotal, generationDuration, subjectsPlaced, subjectsUnplaced, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationTotal:    generationTotal,
		generationDuration: generationDuration,
		subjectsPlaced:     subjectsPlaced,
		subjectsUnplaced:   subjectsUnplaced,
		dbQueryDuration:    dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveGeneration records one generation run.
func (m *MetricsService) ObserveGeneration(outcome string, duration time.Duration, placed, unplaced int) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
	m.subjectsPlaced.Add(float64(placed))
	m.subjectsUnplaced.Add(float64(unplaced))
	atomic.AddUint64(&m.generationCount, 1)
	atomic.AddUint64(&m.placedCount, uint64(placed))
	atomic.AddUint64(&m.unplacedCount, uint64(unplaced))
	atomic.AddUint64(&m.generationNanos, uint64(duration.Nanoseconds()))
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryNanosTotal, uint64(duration.Nanoseconds()))
}

// Snapshot returns aggregated metrics suitable for a JSON summary endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	generations := atomic.LoadUint64(&m.generationCount)
	genNanos := atomic.LoadUint64(&m.generationNanos)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbNanos := atomic.LoadUint64(&m.dbQueryNanosTotal)

	var avgGenerationMs float64
	if generations > 0 {
		avgGenerationMs = float64(genNanos) / float64(generations) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbNanos) / float64(dbCount) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            atomic.LoadUint64(&m.requestCount),
		GenerationsTotal:         generations,
		SubjectsPlaced:           atomic.LoadUint64(&m.placedCount),
		SubjectsUnplaced:         atomic.LoadUint64(&m.unplacedCount),
		AverageGenerationMs:      avgGenerationMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
