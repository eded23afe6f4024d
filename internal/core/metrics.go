package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsRegistry builds a registry from plugin collectors, runtime collectors
// and a gohome_build_info gauge labelled with version and plugin count.
func MetricsRegistry(version string, plugins []Plugin) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gohome_build_info",
		Help: "Build information",
	}, []string{"version"})
	buildInfo.WithLabelValues(version).Set(1)
	registry.MustRegister(buildInfo)

	pluginHealth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gohome_plugins_healthy",
		Help: "Number of loaded plugins reporting HEALTHY",
	}, func() float64 {
		healthy := 0
		for _, plugin := range plugins {
			if plugin.Health() == HealthHealthy {
				healthy++
			}
		}
		return float64(healthy)
	})
	registry.MustRegister(pluginHealth)

	for _, plugin := range plugins {
		for _, collector := range plugin.Collectors() {
			registry.MustRegister(collector)
		}
	}

	return registry
}
