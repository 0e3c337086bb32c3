package domain

// PostedAtLayout is how normalized posting times are stored. All values are
// UTC, so the stored strings sort chronologically.
const PostedAtLayout = "2006-01-02T15:04:05-0700"

// Job is one posting keyed by the listing site's job id. Every field other
// than ID is optional: a freshly discovered row carries only its id, and any
// field the detail page did not yield stays nil.
type Job struct {
	ID int64

	WorkMode       *string // type_work: Remote / Hybrid / On-site
	EmploymentType *string // time_work: Full-time, Contract, ...
	Level          *string

	Description *string
	Language    *string

	Company  *string
	Title    *string
	Location *string

	PostedAgo *string // as scraped, e.g. "Reposted 3 days ago"
	PostedAt  *string // normalized, see PostedAtLayout

	Applicants   *string
	Fit          *string
	EmployerSize *string
	Sector       *string
	ScrapeDate   *string // YYYY-MM-DD
	Applied      bool
	DiscoveredAt string
	DiscoverySeq int64
}

// Complete reports whether detail extraction has already visited the job.
// A company name is the only signal; nothing else is consulted.
func (j Job) Complete() bool {
	return j.Company != nil && *j.Company != ""
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
