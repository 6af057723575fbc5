// Package tor provides the optional anonymising transport used by the
// network collectors.
//
// A Client wraps a SOCKS5 dialer (golang.org/x/net/proxy) and hands out
// context-aware dial functions and HTTP clients. EmbeddedTor launches a
// private Tor daemon through tornago when no external proxy is configured.
// When neither is enabled the collectors dial directly.
package tor
