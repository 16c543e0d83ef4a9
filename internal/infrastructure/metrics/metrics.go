package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meeting_bot_active_sessions",
		Help: "Number of sessions currently registered",
	})

	joinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_bot_joins_total",
		Help: "Total join attempts by result",
	}, []string{"strategy", "result"})

	joinDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meeting_bot_join_duration_seconds",
		Help:    "Time from join request to active session",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
	})

	leavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_bot_leaves_total",
		Help: "Total leave operations by result",
	}, []string{"result"})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meeting_bot_session_duration_seconds",
		Help:    "Lifetime of sessions from join request to teardown",
		Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400},
	})

	// Transcript metrics
	transcriptEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_bot_transcript_events_total",
		Help: "Transcript events received by outcome",
	}, []string{"outcome"}) // outcome: "appended" or "dropped"

	channelFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_bot_channel_failures_total",
		Help: "Transcript channels ended by an upstream failure",
	}, []string{"provider"})

	// Audio metrics
	audioBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_bot_audio_bytes_total",
		Help: "PCM bytes forwarded to transcription",
	})

	audioFramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_bot_audio_frames_dropped_total",
		Help: "Audio frames dropped because the forwarder fell behind",
	})
)

// Join results
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultPartial = "partial"
)

// SessionStarted records a newly registered session
func SessionStarted() {
	activeSessions.Inc()
}

// SessionEnded records a session leaving the registry
func SessionEnded(startedAt time.Time) {
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(startedAt).Seconds())
}

// RecordJoin records a join outcome and, for successful joins, its latency
func RecordJoin(strategy, result string, elapsed time.Duration) {
	joinsTotal.WithLabelValues(strategy, result).Inc()
	if result == ResultSuccess {
		joinDuration.Observe(elapsed.Seconds())
	}
}

// RecordLeave records a leave outcome
func RecordLeave(result string) {
	leavesTotal.WithLabelValues(result).Inc()
}

// RecordTranscriptEvent records whether an event was kept
func RecordTranscriptEvent(appended bool) {
	if appended {
		transcriptEvents.WithLabelValues("appended").Inc()
		return
	}
	transcriptEvents.WithLabelValues("dropped").Inc()
}

// RecordChannelFailure records an upstream transcription failure
func RecordChannelFailure(provider string) {
	channelFailures.WithLabelValues(provider).Inc()
}

// RecordAudioBytes records PCM forwarded upstream
func RecordAudioBytes(n int) {
	audioBytes.Add(float64(n))
}

// RecordDroppedFrame records an audio frame dropped on backpressure
func RecordDroppedFrame() {
	audioFramesDropped.Inc()
}
