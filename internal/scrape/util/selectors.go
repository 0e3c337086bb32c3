package util

import "github.com/PuerkitoBio/goquery"

// FirstText tries each selector in order and returns the cleaned text of the
// first one that matches something non-empty.
func FirstText(root *goquery.Selection, selectors ...string) (string, bool) {
	for _, sel := range selectors {
		if t := CleanText(root.Find(sel).First().Text()); t != "" {
			return t, true
		}
	}
	return "", false
}

// Texts returns the raw text of every match, in document order.
func Texts(root *goquery.Selection, selector string) []string {
	var out []string
	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}
