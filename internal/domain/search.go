package domain

// SearchParams are the run parameters of one discovery pass. They are read
// from config and CLI flags at startup and never change during a run.
type SearchParams struct {
	Keywords   string
	Location   string
	OnlyRemote bool
	MoreRecent bool // restrict to postings from the last 30 days
	MaxPages   int  // 0 = no cap beyond the reported total
}
