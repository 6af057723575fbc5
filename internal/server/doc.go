// Package server exposes the engine over HTTP.
//
// The routing layer is thin: every handler decodes its input, calls one
// engine method and encodes the result as JSON. Errors are returned as
// {"detail": "..."} objects.
package server
