package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contadores del transporte. Un *Metrics nil no registra nada.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	signOuts prometheus.Counter
}

// NewMetrics registra las métricas del transporte en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "umbrella_api_requests_total",
			Help: "Llamadas al backend por método y status (network = sin respuesta)",
		}, []string{"method", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "umbrella_api_request_duration_seconds",
			Help:    "Latencia de las llamadas al backend",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		signOuts: f.NewCounter(prometheus.CounterOpts{
			Name: "umbrella_forced_signouts_total",
			Help: "Cierres de sesión forzados por token expirado",
		}),
	}
}

func (m *Metrics) observe(method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) signOut() {
	if m == nil {
		return
	}
	m.signOuts.Inc()
}
