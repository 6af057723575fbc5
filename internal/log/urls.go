package log

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameter names, lowercased, whose values are
// masked. A parameter also matches when its name contains one of
// sensitiveParamParts.
var sensitiveParams = map[string]bool{
	"pass":    true,
	"pwd":     true,
	"pw":      true,
	"pin":     true,
	"otp":     true,
	"code":    true,
	"sid":     true,
	"ssn":     true,
	"email":   true,
	"mail":    true,
	"user":    true,
	"login":   true,
	"card":    true,
	"cvv":     true,
	"key":     true,
	"sig":     true,
	"hash":    true,
	"account": true,
}

const passwordPlaceholder = "REDACTED"

var sensitiveParamParts = []string{
	"password", "passwd", "token", "secret", "session", "auth", "apikey", "api_key", "cred",
}

// MaskURL masks the userinfo password and sensitive query values of s.
// It reports false when s is not an absolute URL with a host, or when
// nothing needed masking.
func MaskURL(s string) (string, bool) {
	if !strings.Contains(s, "://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s, false
	}

	changed, maskedPassword := false, false
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			// url.URL.String would percent-encode the asterisks of
			// MaskValue, so a plain placeholder is swapped in afterwards.
			u.User = url.UserPassword(u.User.Username(), passwordPlaceholder)
			changed, maskedPassword = true, true
		}
	}

	if u.RawQuery != "" {
		parts := strings.Split(u.RawQuery, "&")
		for i, p := range parts {
			name, _, found := strings.Cut(p, "=")
			if !found {
				continue
			}
			decoded, err := url.QueryUnescape(name)
			if err != nil {
				decoded = name
			}
			if isSensitiveParam(decoded) {
				parts[i] = name + "=" + MaskValue
				changed = true
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}

	if !changed {
		return s, false
	}
	out := u.String()
	if maskedPassword {
		out = strings.Replace(out, ":"+passwordPlaceholder+"@", ":"+MaskValue+"@", 1)
	}
	return out, true
}

func isSensitiveParam(name string) bool {
	name = strings.ToLower(name)
	if sensitiveParams[name] || sensitiveKeys[name] {
		return true
	}
	for _, part := range sensitiveParamParts {
		if strings.Contains(name, part) {
			return true
		}
	}
	return false
}
