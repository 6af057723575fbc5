// Package content fetches a page once and derives structural phishing
// signals from its markup: forms, password inputs, favicon links, and the
// number of anchors that point away from the requested host.
//
// A fetch or parse failure yields the same vector as a page that has none
// of these elements; the pipeline result is what tells the two apart.
//
// The external-link count is a substring heuristic. An anchor is external
// when its href, exactly as written, does not contain the request host
// (including any port). Relative links such as "/login" therefore count as
// external, and an absolute link to another site whose path or query
// mentions the host counts as internal.
package content
