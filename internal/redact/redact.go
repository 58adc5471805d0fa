// Package redact scrubs sensitive substrings from outbound error messages.
// Filesystem paths, database connection strings, and credential-looking
// key/value pairs are replaced with opaque placeholders before any message
// leaves the process.
package redact

import "regexp"

const (
	placeholderDB         = "[REDACTED_DB_CONNECTION]"
	placeholderPath       = "[REDACTED_PATH]"
	placeholderCredential = "[REDACTED_CREDENTIAL]"
)

var dbPatterns = compileAll(
	`sqlite:///[^\s"']+`,
	`postgresql://[^\s"']+`,
	`mysql://[^\s"']+`,
	`mongodb://[^\s"']+`,
	`redis://[^\s"']+`,
)

var pathPatterns = compileAll(
	`/[\w\-./]+/[\w\-./]+`,
	`[A-Z]:\\[\w\-\\./]+`,
	`\./[\w\-./]+`,
	`\.\./[\w\-./]+`,
)

var credentialPatterns = compileAll(
	`token[=:]\s*['"]?[\w\-._]+['"]?`,
	`api[_-]?key[=:]\s*['"]?[\w\-._]+['"]?`,
	`password[=:]\s*['"]?[^\s"']+['"]?`,
	`secret[=:]\s*['"]?[\w\-._]+['"]?`,
	`bearer\s+[\w\-._]+`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Message replaces sensitive substrings in s with placeholders.
// Connection strings are scrubbed before bare paths so a sqlite URI does not
// leak its path half.
func Message(s string) string {
	for _, re := range dbPatterns {
		s = re.ReplaceAllString(s, placeholderDB)
	}
	for _, re := range pathPatterns {
		s = re.ReplaceAllString(s, placeholderPath)
	}
	for _, re := range credentialPatterns {
		s = re.ReplaceAllString(s, placeholderCredential)
	}
	return s
}

// Details recursively scrubs string values in a detail map. Nested maps and
// slices are walked; non-string leaves pass through unchanged.
func Details(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = value(v)
	}
	return out
}

func value(v any) any {
	switch t := v.(type) {
	case string:
		return Message(t)
	case map[string]any:
		return Details(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = value(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = Message(item)
		}
		return out
	default:
		return v
	}
}
