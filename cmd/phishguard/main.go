// Package main provides the entry point for the PhishGuard CLI.
//
// PhishGuard rates URLs as safe, suspicious or dangerous from lexical,
// domain, certificate and page-content signals, and serves the same
// analysis over HTTP for the browser extension.
//
// Usage:
//
//	phishguard serve
//	phishguard analyze <url>...
//	phishguard check <url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
