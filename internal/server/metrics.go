package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shimmeringbee/logwrap"
)

// MetricsHandler exposes the Prometheus registry. Collector errors are logged
// and the remaining metrics are still served.
func MetricsHandler(registry *prometheus.Registry, logger logwrap.Logger) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog:      promLogger{logger: logger},
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      registry,
	})
}

type promLogger struct {
	logger logwrap.Logger
}

func (l promLogger) Println(v ...interface{}) {
	l.logger.LogWarn(context.Background(), "Metrics collection error.", logwrap.Datum("error", fmt.Sprint(v...)))
}
