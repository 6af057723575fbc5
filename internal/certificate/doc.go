// Package certificate inspects the TLS certificate served for an https URL.
//
// The inspector performs a verified handshake against the host's standard
// HTTPS port. A certificate that fails verification counts as no
// certificate at all: the collector emits ssl_valid=false and
// ssl_age_days=0 and the failure class is kept in the pipeline result and
// the debug log only.
package certificate
