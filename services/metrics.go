package services

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded by SubmissionMetrics.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// SubmissionMetrics counts form submissions by outcome. A nil *SubmissionMetrics records nothing.
type SubmissionMetrics struct {
	registrations *prometheus.CounterVec
	feedback      *prometheus.CounterVec
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cabpool_registrations_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
		feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cabpool_feedback_submissions_total",
			Help: "Feedback submissions by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.registrations, m.feedback)
	return m
}

func (m *SubmissionMetrics) registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *SubmissionMetrics) feedbackSubmission(outcome string) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(outcome).Inc()
}
