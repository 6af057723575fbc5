package policy

const (
	// SuspiciousThreshold is the lowest score banded as suspicious.
	SuspiciousThreshold = 0.3
	// DangerousThreshold is the lowest score banded as dangerous.
	DangerousThreshold = 0.7

	// overrideConfidence is reported for every override-list decision.
	overrideConfidence = 0.95
	// blacklistScore and whitelistScore are the fixed scores of override
	// decisions.
	blacklistScore = 0.95
	whitelistScore = 0.05
)

// Source records what produced a decision.
type Source string

const (
	// SourceBlacklist means a blacklist token matched.
	SourceBlacklist Source = "blacklist"
	// SourceWhitelist means a whitelist token matched.
	SourceWhitelist Source = "whitelist"
	// SourceClassifier means the classifier score was banded.
	SourceClassifier Source = "classifier"
)

// Input carries everything Decide looks at.
type Input struct {
	Blacklisted bool
	Whitelisted bool
	// Score and Confidence are the classifier outputs. They are ignored
	// when either override matched.
	Score      float64
	Confidence float64
}

// Decision is the outcome of the policy.
type Decision struct {
	Tier            Tier
	Score           float64
	Confidence      float64
	AllowAccess     bool
	Recommendations []string
	Source          Source
}

var (
	blacklistRecommendations = []string{
		"⚠️ BLACKLISTED: This domain is known to be malicious.",
		"This site has been manually flagged as dangerous.",
		"DO NOT enter any personal information.",
		"DO NOT download any files.",
		"Report this link immediately.",
	}
	whitelistRecommendations = []string{
		"✓ VERIFIED: This is a trusted domain.",
		"This website is on the trusted whitelist.",
		"Always verify the URL matches exactly.",
	}
	safeRecommendations = []string{
		"This website appears to be safe.",
		"Always verify the URL matches the expected domain.",
	}
	suspiciousRecommendations = []string{
		"This website shows suspicious characteristics.",
		"Verify the sender's identity before proceeding.",
		"Check for spelling errors in the domain name.",
		"Look for HTTPS and valid SSL certificate.",
	}
	dangerousRecommendations = []string{
		"⚠️ HIGH RISK: This website is likely a phishing attempt.",
		"DO NOT enter any personal information.",
		"DO NOT download any files.",
		"Report this link to your IT department.",
		"Contact the supposed sender through a trusted channel.",
	}
)

// Decide applies override precedence and then the score bands.
func Decide(in Input) Decision {
	switch {
	case in.Blacklisted:
		return Decision{
			Tier:            TierDangerous,
			Score:           blacklistScore,
			Confidence:      overrideConfidence,
			AllowAccess:     false,
			Recommendations: clone(blacklistRecommendations),
			Source:          SourceBlacklist,
		}
	case in.Whitelisted:
		return Decision{
			Tier:            TierSafe,
			Score:           whitelistScore,
			Confidence:      overrideConfidence,
			AllowAccess:     true,
			Recommendations: clone(whitelistRecommendations),
			Source:          SourceWhitelist,
		}
	}

	score := clamp(in.Score)
	d := Decision{
		Tier:       Band(score),
		Score:      score,
		Confidence: clamp(in.Confidence),
		Source:     SourceClassifier,
	}
	switch d.Tier {
	case TierSafe:
		d.AllowAccess = true
		d.Recommendations = clone(safeRecommendations)
	case TierSuspicious:
		d.Recommendations = clone(suspiciousRecommendations)
	default:
		d.Recommendations = clone(dangerousRecommendations)
	}
	return d
}

// Band maps a score to its tier. Scores outside [0, 1] are clamped first.
func Band(score float64) Tier {
	score = clamp(score)
	switch {
	case score < SuspiciousThreshold:
		return TierSafe
	case score < DangerousThreshold:
		return TierSuspicious
	default:
		return TierDangerous
	}
}

// clamp limits v to [0, 1]. NaN is treated as 0.
func clamp(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
