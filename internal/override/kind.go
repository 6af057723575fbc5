package override

import (
	"fmt"
	"strings"
)

// Kind selects one of the two lists.
type Kind int

const (
	// Blacklist forces a dangerous verdict.
	Blacklist Kind = iota
	// Whitelist forces a safe verdict unless the URL is also blacklisted.
	Whitelist
)

// String returns "blacklist" or "whitelist".
func (k Kind) String() string {
	switch k {
	case Blacklist:
		return "blacklist"
	case Whitelist:
		return "whitelist"
	default:
		return "unknown"
	}
}

// ParseKind parses a list name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blacklist":
		return Blacklist, nil
	case "whitelist":
		return Whitelist, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownList, s)
	}
}
