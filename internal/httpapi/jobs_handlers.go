package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"jobhunt-scout/internal/config"
	"jobhunt-scout/internal/events"
	"jobhunt-scout/internal/store"
)

type JobsHandler struct {
	Store  Store
	Hub    *events.Hub
	CfgVal *atomic.Value // config.Config
	Now    func() time.Time
	Logger *slog.Logger
}

// List serves the review queue under the current config's policy.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	q := cfg.ReviewPolicy().Query(h.Now())

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_limit", "limit must be a non-negative integer")
			return
		}
		q.Limit = n
	}

	jobs, err := h.Store.ListReview(r.Context(), q)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, viewOf(j, cfg.App.BaseURL, false))
	}
	writeJSON(w, http.StatusOK, out)
}

// ByPath handles GET /jobs/{id} and POST /jobs/{id}/applied.
func (h JobsHandler) ByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	idStr, action, _ := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "applied" && r.Method == http.MethodPost:
		h.markApplied(w, r, id)
	case action == "" || action == "applied":
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	default:
		http.NotFound(w, r)
	}
}

func (h JobsHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	j, err := h.Store.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	cfg := h.CfgVal.Load().(config.Config)
	writeJSON(w, http.StatusOK, viewOf(j, cfg.App.BaseURL, true))
}

func (h JobsHandler) markApplied(w http.ResponseWriter, r *http.Request, id int64) {
	changed, err := h.Store.MarkApplied(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	if changed {
		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeJobApplied, 1, events.JobRef{ID: id}))
		if h.Logger != nil {
			h.Logger.Info("job marked applied", "job_id", id, "request_id", reqID)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id, "changed": changed})
}
