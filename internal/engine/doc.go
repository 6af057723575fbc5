// Package engine ties the collectors, override lists, classifier, decision
// policy and scan history together behind the operations exposed by the
// HTTP API and the CLI.
//
// An Engine owns all mutable state: the override lists, the in-memory scan
// history and, optionally, the SQLite archive. It is safe for concurrent
// use.
package engine
