package scrape

import (
	"net/url"
	"strconv"
	"strings"

	"jobhunt-scout/internal/domain"
)

const (
	DefaultBaseURL = "https://www.linkedin.com"

	// PageSize is the number of results the search surface shows per page.
	PageSize = 25

	remoteFilter = "2"        // f_WT
	last30Days   = "r2592000" // f_TPR, seconds
)

// SearchURL builds the listings URL for the page starting at offset,
// newest first.
func SearchURL(base string, p domain.SearchParams, offset int) string {
	q := url.Values{}
	q.Set("keywords", p.Keywords)
	q.Set("location", p.Location)
	q.Set("start", strconv.Itoa(offset))
	q.Set("sortBy", "DD")
	if p.OnlyRemote {
		q.Set("f_WT", remoteFilter)
	}
	if p.MoreRecent {
		q.Set("f_TPR", last30Days)
	}
	return baseURL(base) + "/jobs/search/?" + q.Encode()
}

// DetailURL is the posting page for id. The review queue links here too.
func DetailURL(base string, id int64) string {
	return baseURL(base) + "/jobs/view/" + strconv.FormatInt(id, 10)
}

func baseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}
