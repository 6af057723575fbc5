package lexical

import "strings"

// QuickFeatures are the three lexical signals used by the quick check.
type QuickFeatures struct {
	HasHTTPS           bool `json:"has_https"`
	HasIP              bool `json:"has_ip"`
	SuspiciousKeywords int  `json:"suspicious_keywords"`
}

// QuickResult is the outcome of a quick check.
type QuickResult struct {
	URL      string        `json:"url"`
	IsSafe   bool          `json:"is_safe"`
	Features QuickFeatures `json:"features"`
}

// maxQuickKeywords is the keyword count at which the quick check stops
// considering a URL safe.
const maxQuickKeywords = 2

// QuickCheck applies the cheap conjunctive heuristic
// "https and not an IP literal and fewer than two keywords".
// It performs no network I/O and never consults the classifier.
func QuickCheck(raw string) QuickResult {
	f := QuickFeatures{
		HasHTTPS:           strings.HasPrefix(raw, "https"),
		HasIP:              IsDottedQuad(Split(raw).Host),
		SuspiciousKeywords: CountSuspiciousKeywords(raw),
	}
	return QuickResult{
		URL:      raw,
		IsSafe:   f.HasHTTPS && !f.HasIP && f.SuspiciousKeywords < maxQuickKeywords,
		Features: f,
	}
}
