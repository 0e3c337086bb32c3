package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobhunt-scout/internal/config"
	"jobhunt-scout/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setPasswordReq struct {
	Password string `json:"password"`
}

// SetPassword stores the site password for credentials.user in the keyring.
func (h SecretsHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetPassword(cfg.Credentials.User, req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
