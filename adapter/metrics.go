// Package adapter provides adapters for i2c-transfer integration with external systems.
package adapter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsRegistry returns a registry with the process and Go collectors
// installed, ready to be passed as transfer.Config.Registerer.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewAdminMux serves /metrics from reg and /live, /ready from health.
func NewAdminMux(reg *prometheus.Registry, health http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	if health != nil {
		mux.Handle("/live", health)
		mux.Handle("/ready", health)
	}
	return mux
}
