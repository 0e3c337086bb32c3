package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape/util"
)

// DetailStore is the detail stage's view of the record store.
type DetailStore interface {
	IncompleteIDs(ctx context.Context) ([]int64, error)
	UpsertDetails(ctx context.Context, j domain.Job) error
}

// Classifier detects the language of a text. The confidence is not stored.
type Classifier interface {
	Classify(text string) (code string, confidence float64, err error)
}

var (
	selDescription = []string{
		"div.jobs-box__html-content.jobs-description-content__text",
		"div.jobs-description-content__text",
		"#job-details",
	}
	selCompany = []string{
		"div.job-details-jobs-unified-top-card__company-name",
		".job-details-jobs-unified-top-card__company-name a",
	}
	selTitle = []string{
		"div.job-details-jobs-unified-top-card__job-title",
		"h1.t-24",
	}
	selFit = []string{
		"div.display-flex.flex-row.align-items-center.mt4",
	}
)

const (
	selTertiary   = "div.job-details-jobs-unified-top-card__tertiary-description"
	selInsightLis = "li.job-details-jobs-unified-top-card__job-insight"

	scrapeDateLayout = "2006-01-02"
)

// DetailStage visits every incomplete job, oldest discovery first, and
// fills in its details.
type DetailStage struct {
	Policy     *FetchPolicy
	Store      DetailStore
	Classifier Classifier
	BaseURL    string

	Now    func() time.Time
	Logger *slog.Logger

	// OnSaved, when set, is called after each successful write.
	OnSaved func(j domain.Job)
}

type DetailStats struct {
	Queued int
	Saved  int
	Failed int
}

// Run processes the current work queue once. Fetch and persistence
// failures are logged and counted; only a failure to read the queue or a
// cancelled context ends the run early.
func (s *DetailStage) Run(ctx context.Context) (DetailStats, error) {
	log := s.logger()
	var st DetailStats

	ids, err := s.Store.IncompleteIDs(ctx)
	if err != nil {
		return st, fmt.Errorf("list incomplete jobs: %w", err)
	}
	st.Queued = len(ids)
	log.Info("reading details", "jobs", len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		log.Info("reading job", "n", i+1, "job_id", id)

		markup, err := s.Policy.Fetch(ctx, DetailURL(s.BaseURL, id))
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			log.Error("fetch job", "job_id", id, "err", err)
			st.Failed++
			continue
		}

		job := ExtractJob(id, markup, s.now(), s.Classifier, log)

		if err := s.Store.UpsertDetails(ctx, job); err != nil {
			log.Error("save job", "job_id", id, "err", err)
			st.Failed++
			continue
		}
		st.Saved++
		if s.OnSaved != nil {
			s.OnSaved(job)
		}
	}

	return st, nil
}

func (s *DetailStage) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DetailStage) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// ExtractJob reads every detail field of a posting page. Each field is
// extracted on its own; one that is missing or fails stays nil and never
// affects the others. The result always carries id and the scrape date.
func ExtractJob(id int64, markup string, now time.Time, c Classifier, log *slog.Logger) domain.Job {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("job_id", id)

	job := domain.Job{
		ID:         id,
		ScrapeDate: domain.Str(now.Format(scrapeDateLayout)),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		log.Warn("parse page", "err", err)
		return job
	}

	field(log, "insights", func() {
		f, strategy := extractInsights(doc)
		log.Debug("insights", "strategy", strategy)
		job.WorkMode, job.EmploymentType, job.Level = f.WorkMode, f.EmploymentType, f.Level
	})

	field(log, "description", func() {
		for _, sel := range selDescription {
			if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
				job.Description = &t
				break
			}
		}
		if job.Description == nil || c == nil {
			return
		}
		code, _, err := c.Classify(*job.Description)
		if err != nil {
			log.Debug("detect language", "err", err)
			return
		}
		job.Language = domain.Str(code)
	})

	field(log, "company", func() {
		if t, ok := util.FirstText(doc.Selection, selCompany...); ok {
			job.Company = domain.Str(t)
		}
	})

	field(log, "title", func() {
		if t, ok := util.FirstText(doc.Selection, selTitle...); ok {
			job.Title = domain.Str(t)
		}
	})

	// "Lisbon, Portugal · Reposted 3 days ago · 87 applicants"
	field(log, "tertiary", func() {
		parts := util.SplitDot(doc.Find(selTertiary).First().Text())
		if len(parts) > 0 {
			job.Location = domain.Str(parts[0])
		}
		if len(parts) > 1 {
			job.PostedAgo = domain.Str(parts[1])
			job.PostedAt = domain.Str(util.NormalizePostedAt(parts[1], now))
		}
		if len(parts) > 2 {
			job.Applicants = domain.Str(parts[2])
		}
	})

	field(log, "fit", func() {
		if t, ok := util.FirstText(doc.Selection, selFit...); ok {
			job.Fit = domain.Str(t)
		}
	})

	// "51-200 employees · Software Development"
	field(log, "company insight", func() {
		li := doc.Find(selInsightLis).Eq(1)
		if li.Length() == 0 {
			return
		}
		text := util.CleanText(li.Text())
		if parts := util.SplitDot(text); len(parts) == 2 {
			job.EmployerSize = domain.Str(parts[0])
			job.Sector = domain.Str(parts[1])
			return
		}
		job.EmployerSize = domain.Str(text)
	})

	return job
}

// field runs one extractor and turns a panic into a logged, missing field.
func field(log *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("field extraction failed", "field", name, "panic", r)
		}
	}()
	fn()
}
