// Package override holds the curated blacklist and whitelist that take
// precedence over the classifier.
//
// List files hold one token per line. Blank lines and lines starting with
// '#' are skipped and tokens are lowercased. A token is usually a domain
// but matching is plain substring search: a URL is blacklisted when its
// lowercased text contains any blacklist token, and whitelisted when its
// lowercased authority, with every "www." removed, contains any whitelist
// token. A whitelist entry "google.com" therefore also covers
// "accounts.google.com" and "google.com.evil.example".
//
// The blacklist is the union of a bulk feed file and a manually edited
// file. Additions at runtime are appended to the manual file of the
// corresponding list.
package override
