package feature

// Feature names emitted by the collectors.
// They double as JSON keys in analysis responses and as the column names of
// classifier schemas, so renaming one breaks persisted model artifacts.
const (
	URLLength              = "url_length"
	DomainLength           = "domain_length"
	PathLength             = "path_length"
	HasIP                  = "has_ip"
	NumDots                = "num_dots"
	NumHyphens             = "num_hyphens"
	NumUnderscores         = "num_underscores"
	NumSlashes             = "num_slashes"
	NumQuestionMarks       = "num_questionmarks"
	NumEquals              = "num_equals"
	NumAmpersands          = "num_ampersands"
	NumSpecialChars        = "num_special_chars"
	HasSuspiciousTLD       = "has_suspicious_tld"
	SuspiciousKeywordCount = "suspicious_keyword_count"
	HasHTTPS               = "has_https"
	IsOnion                = "is_onion"

	DomainAgeDays    = "domain_age_days"
	DomainHasNumbers = "domain_has_numbers"
	SubdomainCount   = "subdomain_count"

	SSLValid   = "ssl_valid"
	SSLAgeDays = "ssl_age_days"

	HasForms         = "has_forms"
	HasPasswordField = "has_password_field"
	NumExternalLinks = "num_external_links"
	HasFavicon       = "has_favicon"
	PageRank         = "page_rank"

	IsBlacklisted = "is_blacklisted"
	IsWhitelisted = "is_whitelisted"
)

// UnknownDomainAge is the domain_age_days sentinel for a failed or
// inconclusive registration lookup. Zero means "registered today".
const UnknownDomainAge = -1
