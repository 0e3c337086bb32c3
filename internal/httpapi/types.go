package httpapi

import (
	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape"
)

// JobView is the JSON form of a job.
type JobView struct {
	ID             int64  `json:"id"`
	Link           string `json:"link"`
	Company        string `json:"company,omitempty"`
	Title          string `json:"title,omitempty"`
	Location       string `json:"location,omitempty"`
	WorkMode       string `json:"work_mode,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	Level          string `json:"level,omitempty"`
	Language       string `json:"language,omitempty"`
	PostedAgo      string `json:"posted_ago,omitempty"`
	PostedAt       string `json:"posted_at,omitempty"`
	Applicants     string `json:"applicants,omitempty"`
	Fit            string `json:"fit,omitempty"`
	EmployerSize   string `json:"employer_size,omitempty"`
	Sector         string `json:"sector,omitempty"`
	ScrapeDate     string `json:"scrape_date,omitempty"`
	Description    string `json:"description,omitempty"`
	Applied        bool   `json:"applied"`
}

func viewOf(j domain.Job, baseURL string, withDescription bool) JobView {
	v := JobView{
		ID:             j.ID,
		Link:           scrape.DetailURL(baseURL, j.ID),
		Company:        domain.Deref(j.Company),
		Title:          domain.Deref(j.Title),
		Location:       domain.Deref(j.Location),
		WorkMode:       domain.Deref(j.WorkMode),
		EmploymentType: domain.Deref(j.EmploymentType),
		Level:          domain.Deref(j.Level),
		Language:       domain.Deref(j.Language),
		PostedAgo:      domain.Deref(j.PostedAgo),
		PostedAt:       domain.Deref(j.PostedAt),
		Applicants:     domain.Deref(j.Applicants),
		Fit:            domain.Deref(j.Fit),
		EmployerSize:   domain.Deref(j.EmployerSize),
		Sector:         domain.Deref(j.Sector),
		ScrapeDate:     domain.Deref(j.ScrapeDate),
		Applied:        j.Applied,
	}
	if withDescription {
		v.Description = domain.Deref(j.Description)
	}
	return v
}
