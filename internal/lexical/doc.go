// Package lexical extracts features from the URL string alone.
//
// Everything in this package is pure string processing: no DNS, no sockets,
// no clock. Every input, including strings that are not valid URLs, produces
// a complete feature set, so the analyzer has no failure path.
//
// Character counts (dots, hyphens, slashes, ...) are taken over the whole
// URL string rather than over the host or path alone. Keyword matching is a
// case-insensitive substring test, so a keyword embedded in a longer word
// ("suspended" contains "suspend") still counts. Each distinct keyword found
// contributes one however often it repeats, and keywords sharing a token are
// counted independently ("secureaccountupdate" scores three).
package lexical
