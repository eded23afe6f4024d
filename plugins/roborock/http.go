package roborock

import (
	"encoding/json"
	"net/http"

	"github.com/joshp123/gohome-s5/internal/core"
)

const (
	capabilitiesEndpoint = "/roborock/s5/capabilities"
	statusEndpoint       = "/roborock/s5/status"
)

var _ core.HTTPRegistrant = (*Plugin)(nil)

func (p Plugin) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc(capabilitiesEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if p.adapter == nil {
			http.Error(w, "roborock s5 unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, capabilitiesView(p.adapter.Capabilities()))
	})

	// Serves the last polled status; it never triggers a device call.
	mux.HandleFunc(statusEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if p.poller == nil {
			http.Error(w, "roborock s5 unavailable", http.StatusServiceUnavailable)
			return
		}
		view, err := lastStatusView(p.poller)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, view)
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
