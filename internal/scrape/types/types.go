package types

// ScrapeStatus is the in-memory state of the pipeline, served by the local
// API. Persisted history lives in the scrape_runs table.
type ScrapeStatus struct {
	RunID     string `json:"run_id"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	LastSaved int    `json:"last_saved"`
	Running   bool   `json:"running"`
}
