package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks operation outcomes by reason, fees charged and operation latency.
type Metrics struct {
	Submissions       *prometheus.CounterVec
	Verifications     *prometheus.CounterVec
	Updates           *prometheus.CounterVec
	ConfigChanges     *prometheus.CounterVec
	FeesCharged       prometheus.Counter
	ProofsAllocated   prometheus.Gauge
	OperationDuration *prometheus.HistogramVec
}

// New registers the registry metrics with reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_proof_submissions_total",
			Help: "Proof submissions by outcome (accepted or rejection reason)",
		}, []string{"result"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_proof_verifications_total",
			Help: "Proof verifications by outcome",
		}, []string{"result"}),
		Updates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_proof_updates_total",
			Help: "Proof updates by outcome",
		}, []string{"result"}),
		ConfigChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_config_changes_total",
			Help: "Accepted configuration changes by field",
		}, []string{"field"}),
		FeesCharged: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_verification_fees_charged_total",
			Help: "Sum of verification fees transferred to the authority",
		}),
		ProofsAllocated: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_proofs_allocated",
			Help: "Next proof id, equal to the number of accepted submissions",
		}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_operation_duration_seconds",
			Help:    "Duration of registry operations including the store transaction",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// ResultAccepted labels successful outcomes.
const ResultAccepted = "accepted"

func (m *Metrics) RecordSubmission(result string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordVerification(result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordUpdate(result string) {
	if m == nil {
		return
	}
	m.Updates.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordConfigChange(field string) {
	if m == nil {
		return
	}
	m.ConfigChanges.WithLabelValues(field).Inc()
}

// RecordFee adds an accepted submission's fee and the new allocation count.
func (m *Metrics) RecordFee(amount, nextProofID uint64) {
	if m == nil {
		return
	}
	m.FeesCharged.Add(float64(amount))
	m.ProofsAllocated.Set(float64(nextProofID))
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
