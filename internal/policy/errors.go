package policy

import "errors"

// ErrUnknownTier is returned when a tier name cannot be parsed.
var ErrUnknownTier = errors.New("unknown risk tier")
