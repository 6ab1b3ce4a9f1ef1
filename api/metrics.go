package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors on a private registry so tests can
// build any number of handlers without duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry

	Calculations        *prometheus.CounterVec // result=ok|error
	CalculationDuration prometheus.Histogram
	ShiftWrites         *prometheus.CounterVec // op=add|update|remove|drop
	SummariesSaved      prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payroll",
			Name:      "calculations_total",
			Help:      "Salary calculations by result.",
		}, []string{"result"}),
		CalculationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "payroll",
			Name:      "calculation_duration_seconds",
			Help:      "Time spent fetching and decomposing a period's shifts.",
			Buckets:   prometheus.DefBuckets,
		}),
		ShiftWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payroll",
			Name:      "shift_writes_total",
			Help:      "Successful shift record changes by operation.",
		}, []string{"op"}),
		SummariesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "payroll",
			Name:      "period_summaries_saved_total",
			Help:      "Period-close summaries written by the scheduler.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Calculations,
		m.CalculationDuration,
		m.ShiftWrites,
		m.SummariesSaved,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
