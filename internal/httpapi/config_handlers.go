package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"slices"
	"sync/atomic"

	"jobhunt-scout/internal/config"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	writeJSON(w, http.StatusOK, cur.Redacted())
}

func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	// keys the client leaves out keep their current values; a redacted
	// password is never written back
	cur := h.CfgVal.Load().(config.Config)
	incoming := cur
	incoming.Review.Languages = slices.Clone(cur.Review.Languages)
	incoming.Review.WorkModes = slices.Clone(cur.Review.WorkModes)
	incoming.Review.ExcludedLevels = slices.Clone(cur.Review.ExcludedLevels)
	incoming.Review.ExcludedSectors = slices.Clone(cur.Review.ExcludedSectors)
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON: trailing data")
		return
	}

	if incoming.Credentials.Password == cur.Redacted().Credentials.Password {
		incoming.Credentials.Password = cur.Credentials.Password
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		writeJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	h.CfgVal.Store(saved)
	writeJSON(w, http.StatusOK, saved.Redacted())
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	_, vr := config.NormalizeAndValidate(cur)

	writeJSON(w, http.StatusOK, vr)
}
