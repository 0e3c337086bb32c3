package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Store Store
	Now   func() time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"ok":   true,
		"time": h.Now().UTC().Format(time.RFC3339),
	}
	if h.Store != nil {
		if c, err := h.Store.Counts(r.Context()); err == nil {
			resp["jobs"] = c
		} else {
			resp["ok"] = false
			resp["error"] = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
