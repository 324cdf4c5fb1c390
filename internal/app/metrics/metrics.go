package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meeting_transcriber"

// Poll outcome labels
const (
	OutcomeNotReady = "not_ready"
	OutcomeReady    = "ready"
	OutcomeError    = "error"
)

// WorkflowMetrics records upload and polling activity.
type WorkflowMetrics struct {
	Uploads           *prometheus.CounterVec
	UploadedBytes     prometheus.Counter
	PollAttempts      *prometheus.CounterVec
	Resolutions       prometheus.Counter
	TimeToTranscript  prometheus.Histogram
	CredentialFetches *prometheus.CounterVec
}

// NewWorkflowMetrics creates the workflow collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Video uploads by result.",
		}, []string{"result"}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of video successfully uploaded.",
		}),
		PollAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_attempts_total",
			Help:      "Transcript poll attempts by outcome.",
		}, []string{"outcome"}),
		Resolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_resolved_total",
			Help:      "Transcripts found and presented.",
		}),
		TimeToTranscript: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "time_to_transcript_seconds",
			Help:      "Seconds between the start of polling and the transcript becoming available.",
			Buckets:   []float64{15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		}),
		CredentialFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_fetches_total",
			Help:      "Temporary credential requests by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.Uploads, m.UploadedBytes, m.PollAttempts, m.Resolutions, m.TimeToTranscript, m.CredentialFetches)
	}
	return m
}

// BrokerMetrics records credential issuance by the broker.
type BrokerMetrics struct {
	Issued   *prometheus.CounterVec
	Requests *prometheus.CounterVec
	Latency  prometheus.Histogram
}

// NewBrokerMetrics creates the broker collectors and registers them with reg.
func NewBrokerMetrics(reg prometheus.Registerer) *BrokerMetrics {
	m := &BrokerMetrics{
		Issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "credentials_issued_total",
			Help:      "Credential issuance attempts by result.",
		}, []string{"result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "assume_role_seconds",
			Help:      "Latency of upstream assume-role calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Issued, m.Requests, m.Latency)
	}
	return m
}
