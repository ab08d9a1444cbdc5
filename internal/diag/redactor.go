package diag

import (
	"regexp"
	"strings"
)

// Redactor strips credentials from text copied into a bundle
type Redactor struct {
	patterns []redactionPattern
}

type redactionPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor for tokens and secrets seen in config and env files
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactionPattern{
			// Shell exports must run before the generic key: value rule
			{
				regex:       regexp.MustCompile(`(?i)export\s+([A-Z_]*(?:KEY|TOKEN|SECRET|PASSWORD)[A-Z_]*)\s*=\s*["']?([^"'\s]+)["']?`),
				replacement: `export $1=[REDACTED]`,
			},
			// GitHub personal access tokens, classic and fine-grained
			{
				regex:       regexp.MustCompile(`\b(?:gh[pousr]_[A-Za-z0-9]{20,}|github_pat_[A-Za-z0-9_]{20,})\b`),
				replacement: `[REDACTED]`,
			},
			{
				regex:       regexp.MustCompile(`(?i)(^|[^A-Z_])(api[_-]?key|token|secret|password)\s*[:=]\s*["']?([^"'\s]+)["']?`),
				replacement: `$1$2: [REDACTED]`,
			},
			{
				regex:       regexp.MustCompile(`(?i)Bearer\s+([A-Za-z0-9_\-\.]+)`),
				replacement: `Bearer [REDACTED]`,
			},
			// NuGet feed credentials in NuGet.config
			{
				regex:       regexp.MustCompile(`(?i)(<add\s+key="ClearTextPassword"\s+value=")[^"]*(")`),
				replacement: `${1}[REDACTED]${2}`,
			},
			// Credentials embedded in feed URLs
			{
				regex:       regexp.MustCompile(`(?i)(https?)://([^:/\s]+):([^@/\s]+)@`),
				replacement: `$1://$2:[REDACTED]@`,
			},
		},
	}
}

// Redact applies all redaction patterns to the input text
func (r *Redactor) Redact(input string) string {
	result := input
	for _, pattern := range r.patterns {
		result = pattern.regex.ReplaceAllString(result, pattern.replacement)
	}
	return result
}

// IsLikelySensitive checks if a line mentions a credential
func IsLikelySensitive(line string) bool {
	lowerLine := strings.ToLower(line)
	for _, keyword := range []string{"password", "secret", "token", "api_key", "apikey", "credential", "github_pat_", "ghp_"} {
		if strings.Contains(lowerLine, keyword) {
			return true
		}
	}
	return false
}
