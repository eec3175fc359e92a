package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	serviceChat  = "chat"
	serviceImage = "image"
	serviceAudio = "audio"

	statusSuccess = "success"
	statusError   = "error"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_ai_requests_total",
			Help: "Total number of requests to generative AI services.",
		},
		[]string{"service", "model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_request_duration_seconds",
			Help:    "Histogram of generative AI request durations, including audio polling.",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"service", "model"},
	)
	aiAudioPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_audio_poll_attempts",
			Help:    "Number of status requests made per audio generation.",
			Buckets: prometheus.LinearBuckets(1, 3, 11), // 1, 4, ..., 31
		},
	)
)

// observe records the outcome of one generation call. status is a short
// label such as "success", "error" or "rate_limited".
func observe(service, model, status string, started time.Time) {
	aiRequestsTotal.With(prometheus.Labels{"service": service, "model": model, "status": status}).Inc()
	aiRequestDuration.With(prometheus.Labels{"service": service, "model": model}).Observe(time.Since(started).Seconds())
}
