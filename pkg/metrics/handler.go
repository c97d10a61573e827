package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the app's private registry with every metric set the app records.
type Registry struct {
	reg  *prometheus.Registry
	OTP  *OTPMetrics
	Jobs *JobMetrics
}

// NewRegistry builds a registry with Go runtime and process collectors plus app metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:  reg,
		OTP:  NewOTPMetrics(reg),
		Jobs: NewJobMetrics(reg),
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
