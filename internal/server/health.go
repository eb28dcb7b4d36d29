package server

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

type healthHandler struct {
	checks map[string]Check
	now    func() time.Time
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health reports every dependency; any failure degrades the service
func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:    "healthy",
		Timestamp: h.now(),
		Services:  make(map[string]string, len(h.checks)),
	}
	for name, err := range h.run(r.Context()) {
		if err != nil {
			response.Services[name] = "unhealthy"
			response.Status = "degraded"
		} else {
			response.Services[name] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// Ready answers OK only when every dependency is usable
func (h *healthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	results := h.run(r.Context())
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if results[name] != nil {
			http.Error(w, "Service not ready: "+name, http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *healthHandler) run(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	out := make(map[string]error, len(h.checks))
	for name, check := range h.checks {
		out[name] = check(ctx)
	}
	return out
}
