package completion

import (
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// Secrets shorter than this are not replaced literally; they would match
// ordinary words in error text.
const minSecretLen = 6

// Redactor replaces credentials in error text before it is shown.
type Redactor struct {
	secret   string
	patterns []*regexp.Regexp
}

// NewRedactor creates a Redactor for the given credential plus common API key
// shapes. An empty secret only applies the patterns.
func NewRedactor(secret string) *Redactor {
	return &Redactor{
		secret: secret,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`sk-[A-Za-z0-9_\-*]{8,}`),
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{8,}`),
		},
	}
}

// Redact returns s with every secret occurrence replaced by [REDACTED].
func (r *Redactor) Redact(s string) string {
	if len(r.secret) >= minSecretLen {
		s = strings.ReplaceAll(s, r.secret, redactedPlaceholder)
	}
	for _, p := range r.patterns {
		s = p.ReplaceAllString(s, redactedPlaceholder)
	}
	return s
}
