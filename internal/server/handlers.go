package server

import (
	"encoding/json"
	"net/http"

	"github.com/joshp123/gohome-s5/internal/core"
)

type pluginHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthReport struct {
	Status  string                  `json:"status"`
	Plugins map[string]pluginHealth `json:"plugins"`
}

// HealthHandler reports per-plugin health. It answers 503 only when a plugin
// is in ERROR; a degraded plugin still serves its last known state.
func HealthHandler(plugins []core.Plugin) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		report := healthReport{Status: "ok", Plugins: make(map[string]pluginHealth, len(plugins))}
		code := http.StatusOK
		for _, p := range plugins {
			health := p.Health()
			report.Plugins[p.ID()] = pluginHealth{Status: string(health), Message: p.HealthMessage()}
			switch health {
			case core.HealthError:
				report.Status = "error"
				code = http.StatusServiceUnavailable
			case core.HealthDegraded:
				if report.Status == "ok" {
					report.Status = "degraded"
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	})
}
