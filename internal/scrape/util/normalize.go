package util

import "strings"

// MiddleDot separates inline facts on detail pages ("51-200 employees · Software").
const MiddleDot = "·"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// FirstLine returns the first non-blank line of s, cleaned. Insight chips
// render a secondary label on a second line that must not leak into the value.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if l := CleanText(line); l != "" {
			return l
		}
	}
	return ""
}

// SplitDot splits on the middle dot and drops empty parts.
func SplitDot(s string) []string {
	var out []string
	for _, p := range strings.Split(s, MiddleDot) {
		if p = CleanText(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
