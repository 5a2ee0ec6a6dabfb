// Package metrics holds the prometheus collectors of both servers. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nasdash"

type Metrics struct {
	reg *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	folderLoads     *prometheus.CounterVec
	nasRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Calls made to the NAS backend API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of NAS backend API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		folderLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "navigator",
			Name:      "folder_loads_total",
			Help:      "Folder loads by result (ok, error, superseded).",
		}, []string{"result"}),
		nasRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nas",
			Name:      "requests_total",
			Help:      "Requests served by the NAS backend by handler and status code.",
		}, []string{"handler", "code"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.backendRequests,
		m.backendLatency,
		m.folderLoads,
		m.nasRequests,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveBackend(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) FolderLoad(result string) {
	if m == nil {
		return
	}
	m.folderLoads.WithLabelValues(result).Inc()
}

func (m *Metrics) NASRequest(handler string, code int) {
	if m == nil {
		return
	}
	m.nasRequests.WithLabelValues(handler, strconv.Itoa(code)).Inc()
}
