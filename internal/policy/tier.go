package policy

import (
	"fmt"
	"strings"
)

// Tier is the coarse risk level assigned to a URL.
type Tier int

const (
	// TierSafe means the URL may be visited.
	TierSafe Tier = iota
	// TierSuspicious means the URL shows phishing traits and access is
	// withheld until the user verifies it.
	TierSuspicious
	// TierDangerous means the URL is blacklisted or very likely phishing.
	TierDangerous
)

// Tiers lists every tier from least to most severe.
var Tiers = []Tier{TierSafe, TierSuspicious, TierDangerous}

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierSuspicious:
		return "suspicious"
	case TierDangerous:
		return "dangerous"
	default:
		return "unknown"
	}
}

// MarshalText encodes the tier by name so JSON output carries
// "safe" rather than 0.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier converts a case-insensitive tier name into a Tier.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return TierSafe, nil
	case "suspicious":
		return TierSuspicious, nil
	case "dangerous":
		return TierDangerous, nil
	default:
		return TierSafe, fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
}
