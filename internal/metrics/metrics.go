// Package metrics exposes Prometheus instruments for the HTTP surface, quiz
// flow and LLM calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument, registered against one Registerer.
type Metrics struct {
	gatherer prometheus.Gatherer

	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	QuizzesIssued    *prometheus.CounterVec
	FormatErrors     prometheus.Counter
	Gradings         *prometheus.CounterVec
	GradingScore     prometheus.Histogram
	LLMRequestLength *prometheus.HistogramVec
}

// New creates and registers the instruments on reg. A nil reg uses a fresh
// registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		QuizzesIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizwise_quizzes_issued_total",
				Help: "Quizzes issued, by difficulty",
			},
			[]string{"difficulty"},
		),
		FormatErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizwise_provider_format_errors_total",
			Help: "Generated quiz batches rejected as malformed",
		}),
		Gradings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizwise_gradings_total",
				Help: "Graded submissions, by quiz difficulty",
			},
			[]string{"difficulty"},
		),
		GradingScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizwise_grading_score_percent",
			Help:    "Raw score of graded submissions",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		LLMRequestLength: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quizwise_llm_request_duration_seconds",
				Help:    "LLM request latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"purpose", "success"},
		),
	}
	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.QuizzesIssued,
		m.FormatErrors,
		m.Gradings,
		m.GradingScore,
		m.LLMRequestLength,
	)
	return m
}

// ObserveLLMRequest records one LLM call.
func (m *Metrics) ObserveLLMRequest(purpose string, success bool, elapsed time.Duration) {
	m.LLMRequestLength.WithLabelValues(purpose, strconv.FormatBool(success)).Observe(elapsed.Seconds())
}

// QuizIssued counts an issued quiz.
func (m *Metrics) QuizIssued(difficulty string) {
	m.QuizzesIssued.WithLabelValues(difficulty).Inc()
}

// ProviderFormatError counts a rejected batch.
func (m *Metrics) ProviderFormatError() {
	m.FormatErrors.Inc()
}

// Graded records a graded submission.
func (m *Metrics) Graded(difficulty string, scorePercent int) {
	m.Gradings.WithLabelValues(difficulty).Inc()
	m.GradingScore.Observe(float64(scorePercent))
}

// Middleware counts and times every request by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
