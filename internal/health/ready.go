package health

import (
	"encoding/json"
	"net/http"
)

// Check probes one dependency. A nil error means the dependency is usable.
type Check func() error

func Readiness(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			Status  string            `json:"status"`
			Failing map[string]string `json:"failing,omitempty"`
		}
		out := resp{Status: "ready"}
		for name, check := range checks {
			if err := check(); err != nil {
				if out.Failing == nil {
					out.Failing = map[string]string{}
				}
				out.Failing[name] = err.Error()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if len(out.Failing) > 0 {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
