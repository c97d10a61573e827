package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OTPMetrics counts OTP issuance, verification outcomes, sweeps and limiter denials.
type OTPMetrics struct {
	issued   *prometheus.CounterVec
	verified *prometheus.CounterVec
	swept    prometheus.Counter
	denied   *prometheus.CounterVec
}

// NewOTPMetrics registers the OTP metrics on the provided registerer.
func NewOTPMetrics(reg prometheus.Registerer) *OTPMetrics {
	if reg == nil {
		return &OTPMetrics{}
	}
	issued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_issued_total",
		Help: "OTP codes issued, by purpose and delivery outcome.",
	}, []string{"purpose", "outcome"})
	verified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verified_total",
		Help: "OTP verification attempts, by purpose and outcome.",
	}, []string{"purpose", "outcome"})
	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_swept_total",
		Help: "Expired OTP rows deleted by the cleanup job.",
	})
	denied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_denied_total",
		Help: "Requests rejected by the fixed-window rate limiter.",
	}, []string{"scope"})
	reg.MustRegister(issued, verified, swept, denied)
	return &OTPMetrics{
		issued:   issued,
		verified: verified,
		swept:    swept,
		denied:   denied,
	}
}

func (m *OTPMetrics) IncIssued(purpose, outcome string) {
	if m == nil || m.issued == nil {
		return
	}
	m.issued.WithLabelValues(normalizeLabel(purpose), normalizeLabel(outcome)).Inc()
}

func (m *OTPMetrics) IncVerified(purpose, outcome string) {
	if m == nil || m.verified == nil {
		return
	}
	m.verified.WithLabelValues(normalizeLabel(purpose), normalizeLabel(outcome)).Inc()
}

func (m *OTPMetrics) AddSwept(n int64) {
	if m == nil || m.swept == nil || n <= 0 {
		return
	}
	m.swept.Add(float64(n))
}

func (m *OTPMetrics) IncDenied(scope string) {
	if m == nil || m.denied == nil {
		return
	}
	m.denied.WithLabelValues(normalizeLabel(scope)).Inc()
}
