// Package log builds the slog loggers used by phishguard and masks
// sensitive values before they reach the output.
//
// URLs submitted for analysis are logged on every request, and phishing
// links routinely carry the victim's data: tracking tokens, pre-filled
// e-mail addresses, even passwords in the userinfo part. SecureHandler
// rewrites every string attribute that looks like such a URL, replacing
// the userinfo password and the values of sensitive query parameters with
// MaskValue while leaving scheme, host and path readable. Attributes whose
// key names a secret (cookie, token, password, ...) are masked outright.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, log.Options{Level: slog.LevelInfo})
//	logger.Info("url analyzed", "url", "https://evil.example/?token=abc")
//	// url=https://evil.example/?token=***REDACTED***
package log
