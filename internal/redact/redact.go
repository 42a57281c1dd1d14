// Package redact strips credentials from strings before they are logged or
// wrapped into errors. Store connection settings (postgres URLs, redis
// passwords, S3 keys) end up in driver error messages, and those messages end
// up in logs.
package redact

import (
	"net/url"
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// Precompiled regex patterns
var (
	// userinfo in connection URLs
	connURLRegex = regexp.MustCompile(`(?i)\b(postgres|postgresql|redis|rediss|s3|https?)://[^/@\s]+@`)

	// password=..., password: ... in DSNs and driver messages
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)

	// AWS access key ids and signatures
	awsKeyRegex = regexp.MustCompile(`(AKIA|ASIA)[A-Z0-9]{12,}`)
	secretRegex = regexp.MustCompile(`(?i)(secret[_-]?access[_-]?key|signature)(['"\s:=]+)[A-Za-z0-9/+=]{8,}`)

	patterns = []struct {
		re          *regexp.Regexp
		placeholder string
	}{
		{connURLRegex, "${1}://" + RedactedCredentialPlaceholder + "@"},
		{passwordRegex, RedactedCredentialPlaceholder},
		{awsKeyRegex, RedactedKeyPlaceholder},
		{secretRegex, RedactedKeyPlaceholder},
	}
)

// String redacts credentials from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts credentials from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL returns raw with any password in its userinfo masked, keeping the
// user name, host, and path readable. Strings that do not parse as URLs are
// passed through String.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return String(raw)
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", "xxxxx")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
