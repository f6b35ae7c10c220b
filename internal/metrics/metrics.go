package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TTSRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calma_tts_requests_total",
			Help: "Relay requests by voice and response status",
		},
		[]string{"voice", "status"},
	)

	TTSUpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calma_tts_upstream_duration_seconds",
			Help:    "Time until the speech provider answered",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"voice"},
	)

	QuizSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calma_quiz_sessions_started_total",
			Help: "Quiz sessions created",
		},
	)

	QuizResultsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calma_quiz_results_computed_total",
			Help: "Result sets computed for sessions reaching the results screen",
		},
	)

	AudioCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calma_audio_cache_lookups_total",
			Help: "Audio cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
)
