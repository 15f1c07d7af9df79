// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	chatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Handled chat messages by classified intent.",
		},
		[]string{"intent"},
	)

	modelCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_call_latency_ms",
			Help:    "Language model call latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"model", "success"},
	)

	modelPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_prompt_tokens_total",
			Help: "Estimated prompt tokens sent per model.",
		},
		[]string{"model"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Sessions currently held in the store.",
		},
	)

	sessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_swept_total",
			Help: "Expired sessions evicted by the sweep.",
		},
	)

	clinicSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_searches_total",
			Help: "Radius clinic searches served.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			chatMessagesTotal, modelCallLatencyMs, modelPromptTokens,
			sessionsActive, sessionsSweptTotal, clinicSearchesTotal,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Chat helpers --------

func IncChatMessages(intent string) {
	chatMessagesTotal.WithLabelValues(norm(intent)).Inc()
}

func ObserveModelCall(model string, elapsed time.Duration, success bool) {
	modelCallLatencyMs.WithLabelValues(norm(model), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func AddPromptTokens(model string, tokens int) {
	if tokens > 0 {
		modelPromptTokens.WithLabelValues(norm(model)).Add(float64(tokens))
	}
}

func SetActiveSessions(n int) { sessionsActive.Set(float64(n)) }

func AddSessionsSwept(n int) { sessionsSweptTotal.Add(float64(n)) }

// -------- Clinic helpers --------

func IncClinicSearches() { clinicSearchesTotal.Inc() }
