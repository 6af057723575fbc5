// Package policy turns override matches and classifier output into a risk
// tier, an access decision and a list of recommendations shown to the user.
//
// Decide is a total function: every combination of inputs yields a
// decision. The blacklist takes precedence over the whitelist, and both
// take precedence over the classifier. Scores are clamped to [0, 1] before
// they are banded; the bands are half-open, so 0.3 is already suspicious and
// 0.7 is already dangerous.
package policy
