package scrape

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape/util"
)

// IDStore receives discovered ids.
type IDStore interface {
	UpsertIDs(ctx context.Context, ids []int64) (added int, err error)
}

const (
	selTotalCount = "div.jobs-search-results-list__subtitle span"
	selListItem   = "li.jobs-search-results__list-item"
	attrJobID     = "data-occludable-job-id"

	scriptHeight = "document.body.scrollHeight"
	scriptScroll = "window.scrollTo(0, document.body.scrollHeight)"

	DefaultScrollSettle = 10 * time.Second
	DefaultMaxScrolls   = 50
)

// Discoverer walks the search result pages and records every job id it
// sees as an id-only row.
type Discoverer struct {
	Session Session
	Store   IDStore
	Limiter *util.HostLimiter
	BaseURL string

	// ScrollSettle is waited after the page stops growing.
	ScrollSettle time.Duration
	MaxScrolls   int

	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

type DiscoverStats struct {
	Total int // as reported by the first page, 0 if unknown
	Pages int // pages fetched
	Found int // ids seen, including known ones
	Added int // ids that were new
}

// Run fetches page 0, derives the page count from the reported total and
// walks the remaining pages. A page without ids ends the walk regardless of
// the computed count. Only context errors are returned.
func (d *Discoverer) Run(ctx context.Context, p domain.SearchParams) (DiscoverStats, error) {
	log := d.logger()
	var st DiscoverStats

	doc, err := d.loadPage(ctx, p, 0)
	if err != nil {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		log.Error("first search page failed", "err", err)
		return st, nil
	}
	st.Pages++

	st.Total = parseTotal(doc)
	pages := (st.Total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if p.MaxPages > 0 && pages > p.MaxPages {
		pages = p.MaxPages
	}
	log.Info("search results", "total", st.Total, "pages", pages)

	d.record(ctx, &st, parseIDs(doc))

	for page := 1; page < pages; page++ {
		log.Info("scraping page", "page", page)

		doc, err := d.loadPage(ctx, p, page*PageSize)
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			log.Warn("search page failed", "page", page, "err", err)
			continue
		}
		st.Pages++

		ids := parseIDs(doc)
		if len(ids) == 0 {
			log.Info("no more jobs found", "page", page)
			break
		}
		d.record(ctx, &st, ids)
		log.Info("jobs found", "page", page, "count", len(ids))
	}

	return st, nil
}

func (d *Discoverer) record(ctx context.Context, st *DiscoverStats, ids []int64) {
	st.Found += len(ids)
	added, err := d.Store.UpsertIDs(ctx, ids)
	if err != nil {
		d.logger().Error("store ids", "count", len(ids), "err", err)
		return
	}
	st.Added += added
}

func (d *Discoverer) loadPage(ctx context.Context, p domain.SearchParams, offset int) (*goquery.Document, error) {
	u := SearchURL(d.BaseURL, p, offset)
	if err := d.Limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	if err := d.Session.Navigate(ctx, u); err != nil {
		return nil, errors.Join(ErrNavigate, err)
	}
	if err := d.scrollToEnd(ctx); err != nil {
		return nil, err
	}
	src, err := d.Session.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(src))
}

// scrollToEnd scrolls until the body height stops changing, then waits for
// the last batch of results to render. Script errors stop scrolling but do
// not fail the page.
func (d *Discoverer) scrollToEnd(ctx context.Context) error {
	var last int64
	if err := d.Session.Execute(ctx, scriptHeight, &last); err != nil {
		d.logger().Debug("read scroll height", "err", err)
	} else {
		limit := d.MaxScrolls
		if limit <= 0 {
			limit = DefaultMaxScrolls
		}
		for i := 0; i < limit; i++ {
			if err := d.Session.Execute(ctx, scriptScroll, nil); err != nil {
				d.logger().Debug("scroll", "err", err)
				break
			}
			var h int64
			if err := d.Session.Execute(ctx, scriptHeight, &h); err != nil || h == last {
				break
			}
			last = h
		}
	}

	if d.Sleep != nil {
		return d.Sleep(ctx, d.ScrollSettle)
	}
	return Sleep(ctx, d.ScrollSettle)
}

func (d *Discoverer) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// parseTotal reads "1,234 results" style counters. Anything unreadable is 0.
func parseTotal(doc *goquery.Document) int {
	fields := strings.Fields(doc.Find(selTotalCount).First().Text())
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseIDs returns the distinct job ids of the result list in page order.
func parseIDs(doc *goquery.Document) []int64 {
	var ids []int64
	seen := map[int64]bool{}
	doc.Find(selListItem).Each(func(_ int, s *goquery.Selection) {
		raw, ok := s.Attr(attrJobID)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids
}
