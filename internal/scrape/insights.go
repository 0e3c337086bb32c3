package scrape

import (
	"github.com/PuerkitoBio/goquery"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape/util"
)

const (
	// exact class match: the same class also appears combined with others on
	// unrelated chips
	selInsightSecondary = "span[class='job-details-jobs-unified-top-card__job-insight-view-model-secondary']"
	selAccentLabel      = "span[class*='ui-label--accent-3']"
)

type insightFields struct {
	WorkMode       *string
	EmploymentType *string
	Level          *string
}

// insightStrategy reads work mode, employment type and level from one
// layout of the detail page's top card.
type insightStrategy struct {
	name    string
	applies func(chips []string) bool
	extract func(doc *goquery.Document, chips []string) insightFields
}

// insightStrategies are tried in order; the first applicable one wins.
// Postings that omit the level render two chips or fewer and carry the work
// mode in a separate accent label.
var insightStrategies = []insightStrategy{
	{
		name:    "three-chips",
		applies: func(chips []string) bool { return len(chips) >= 3 },
		extract: func(_ *goquery.Document, chips []string) insightFields {
			return insightFields{
				WorkMode:       domain.Str(util.FirstLine(chips[0])),
				EmploymentType: domain.Str(util.FirstLine(chips[1])),
				Level:          domain.Str(util.FirstLine(chips[2])),
			}
		},
	},
	{
		name:    "accent-label",
		applies: func(chips []string) bool { return len(chips) <= 2 },
		extract: func(doc *goquery.Document, chips []string) insightFields {
			var f insightFields
			if label := doc.Find(selAccentLabel).First(); label.Length() > 0 {
				f.WorkMode = domain.Str(util.FirstLine(label.Text()))
			}
			if len(chips) > 0 {
				f.EmploymentType = domain.Str(util.FirstLine(chips[0]))
			}
			if len(chips) > 1 {
				f.Level = domain.Str(util.FirstLine(chips[1]))
			}
			return f
		},
	},
}

// extractInsights returns the fields and the name of the strategy used.
func extractInsights(doc *goquery.Document) (insightFields, string) {
	chips := util.Texts(doc.Selection, selInsightSecondary)
	for _, s := range insightStrategies {
		if s.applies(chips) {
			return s.extract(doc, chips), s.name
		}
	}
	return insightFields{}, ""
}
