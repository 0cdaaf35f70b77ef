package rectangle

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rectangle-service/rectangle/domain"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os coletores Prometheus do serviço. Um *Metrics nil é válido
// e não registra nada.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	updates    *prometheus.CounterVec
	pending    prometheus.Gauge
	dimensions *prometheus.GaugeVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rectangle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rectangle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests, including the validation delay.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 13), // 5ms a ~20s
		}, []string{"method", "path"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rectangle",
			Name:      "updates_total",
			Help:      "Rectangle update attempts by outcome.",
		}, []string{"outcome"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rectangle",
			Name:      "pending_updates",
			Help:      "Updates currently waiting for the validation delay.",
		}),
		dimensions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rectangle",
			Name:      "dimension",
			Help:      "Last committed rectangle dimensions.",
		}, []string{"dimension"}),
	}
	reg.MustRegister(m.requests, m.duration, m.updates, m.pending, m.dimensions)
	return m
}

// Handler serve o registry no formato de exposição do Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// unmatchedRoute rotula respostas que não passaram por uma rota do mux
// (404, 405, preflight CORS), sem explodir a cardinalidade com paths crus.
const unmatchedRoute = "unmatched"

type routeLabelKey struct{}

type routeLabel struct{ template string }

// Middleware registra contagem e duração de toda requisição. Fica por fora do
// mux; o template da rota chega via TagRoute, que roda dentro dele.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		label := &routeLabel{template: unmatchedRoute}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), routeLabelKey{}, label)))

		m.requests.WithLabelValues(r.Method, label.template, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(r.Method, label.template).Observe(time.Since(start).Seconds())
	})
}

// TagRoute anota o template da rota casada pelo mux para o Middleware.
func (m *Metrics) TagRoute(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeLabelKey{}).(*routeLabel); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					label.template = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Metrics) observeUpdate(o domain.Outcome) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) trackPending(entering bool) {
	if m == nil {
		return
	}
	if entering {
		m.pending.Inc()
		return
	}
	m.pending.Dec()
}

func (m *Metrics) setDimensions(d domain.Dimensions) {
	if m == nil {
		return
	}
	m.dimensions.WithLabelValues("width").Set(d.Width)
	m.dimensions.WithLabelValues("height").Set(d.Height)
}
