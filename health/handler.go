package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregated status as JSON: 200 when UP, 503 when DOWN.
func Handler(a *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := a.CheckAll(r.Context())
		code := http.StatusOK
		if status.Status != StatusUp {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
