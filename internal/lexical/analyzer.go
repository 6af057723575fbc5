package lexical

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
)

// dottedQuadPattern is deliberately strict: four groups of one to three
// digits and nothing else. IPv6 literals, integer-encoded hosts, and octets
// above 255 are not recognised.
var dottedQuadPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// specialChars is the punctuation set counted by num_special_chars.
const specialChars = "!@#$%^&*()"

// SuspiciousTLDs are top-level domains heavily used by free or abused
// registrars.
var SuspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".zip", ".review"}

// SuspiciousKeywords are terms commonly used in credential-phishing URLs.
var SuspiciousKeywords = []string{
	"verify", "account", "suspend", "restricted", "security",
	"confirm", "update", "login", "signin", "banking", "paypal",
	"ebay", "amazon", "apple", "microsoft", "secure", "alert",
}

// Parts is the lenient decomposition of a URL used by every collector.
type Parts struct {
	// Scheme is the lowercased scheme, empty when absent.
	Scheme string
	// Authority is the host including any port, as written.
	Authority string
	// Host is the lowercased host without port.
	Host string
	// Path is the URL path.
	Path string
}

// Split decomposes raw into scheme, authority, host and path.
// It falls back to a manual split when net/url rejects the input, so that
// malformed URLs still yield usable parts.
func Split(raw string) Parts {
	if u, err := url.Parse(raw); err == nil {
		return Parts{
			Scheme:    strings.ToLower(u.Scheme),
			Authority: u.Host,
			Host:      strings.ToLower(u.Hostname()),
			Path:      u.Path,
		}
	}

	var p Parts
	rest := raw
	if idx := strings.Index(rest, "://"); idx > 0 {
		p.Scheme = strings.ToLower(rest[:idx])
		rest = rest[idx+3:]
		end := strings.IndexAny(rest, "/?#")
		if end == -1 {
			end = len(rest)
		}
		p.Authority = rest[:end]
		rest = rest[end:]
		host := p.Authority
		if at := strings.LastIndex(host, "@"); at != -1 {
			host = host[at+1:]
		}
		if colon := strings.LastIndex(host, ":"); colon != -1 && !strings.Contains(host[colon:], "]") {
			host = host[:colon]
		}
		p.Host = strings.ToLower(strings.Trim(host, "[]"))
	}
	if end := strings.IndexAny(rest, "?#"); end != -1 {
		rest = rest[:end]
	}
	p.Path = rest
	return p
}

// IsDottedQuad reports whether host is a strict dotted-quad literal.
func IsDottedQuad(host string) bool {
	return dottedQuadPattern.MatchString(host)
}

// HasSuspiciousTLD reports whether host ends with one of SuspiciousTLDs.
func HasSuspiciousTLD(host string) bool {
	host = strings.ToLower(host)
	for _, tld := range SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

// CountSuspiciousKeywords returns how many of SuspiciousKeywords occur in
// raw, case-insensitively. Each keyword contributes at most one.
func CountSuspiciousKeywords(raw string) int {
	lower := strings.ToLower(raw)
	count := 0
	for _, kw := range SuspiciousKeywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

// countAny returns the number of runes in s that appear in set.
func countAny(s, set string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(set, r) {
			n++
		}
	}
	return n
}

// Analyze computes the lexical feature set for raw.
func Analyze(raw string) feature.Vector {
	p := Split(raw)
	v := feature.New()

	v.SetInt(feature.URLLength, len(raw))
	v.SetInt(feature.DomainLength, len(p.Authority))
	v.SetInt(feature.PathLength, len(p.Path))
	v.SetBool(feature.HasIP, IsDottedQuad(p.Host))
	v.SetInt(feature.NumDots, strings.Count(raw, "."))
	v.SetInt(feature.NumHyphens, strings.Count(raw, "-"))
	v.SetInt(feature.NumUnderscores, strings.Count(raw, "_"))
	v.SetInt(feature.NumSlashes, strings.Count(raw, "/"))
	v.SetInt(feature.NumQuestionMarks, strings.Count(raw, "?"))
	v.SetInt(feature.NumEquals, strings.Count(raw, "="))
	v.SetInt(feature.NumAmpersands, strings.Count(raw, "&"))
	v.SetInt(feature.NumSpecialChars, countAny(raw, specialChars))
	v.SetBool(feature.HasSuspiciousTLD, HasSuspiciousTLD(p.Host))
	v.SetInt(feature.SuspiciousKeywordCount, CountSuspiciousKeywords(raw))
	v.SetBool(feature.HasHTTPS, strings.HasPrefix(raw, "https"))
	v.SetBool(feature.IsOnion, IsValidV3Address(p.Host))

	return v
}
