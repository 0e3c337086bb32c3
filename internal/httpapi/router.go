package httpapi

import "net/http"

// NewMux wires every route. Wrap it with Chain for the middleware stack.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Store: d.Store, Now: d.now}.Health,
	}))

	// Jobs
	jh := JobsHandler{Store: d.Store, Hub: d.Hub, CfgVal: d.CfgVal, Now: d.now, Logger: d.logger()}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/", jh.ByPath) // /jobs/{id}, /jobs/{id}/applied

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/password", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetPassword,
	}))

	// Scrape
	sch := ScrapeHandler{Store: d.Store, StatusFn: d.Status}
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))

	// DB maintenance
	dh := DBHandler{Store: d.Store}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}

// NewHandler is NewMux behind the standard middleware stack.
func NewHandler(d Deps) http.Handler {
	log := d.logger().With("component", "http")
	return Chain(NewMux(d), RequestID, Recover(log), AccessLog(log), Cors)
}
