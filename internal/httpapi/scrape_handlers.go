package httpapi

import (
	"net/http"

	"jobhunt-scout/internal/scrape/types"
)

type ScrapeHandler struct {
	Store    Store
	StatusFn func() types.ScrapeStatus
}

// Status reports the in-process pipeline (if any) and the persisted run
// history.
func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.LastRuns(r.Context(), 10)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	resp := map[string]any{"runs": runs}
	if h.StatusFn != nil {
		resp["current"] = h.StatusFn()
	}
	writeJSON(w, http.StatusOK, resp)
}
