package security

import "strings"

// redactionMarkers are scanned in this fixed priority order. Each marker is
// matched case-insensitively against the output of the previous marker's
// redaction, so a later marker can never resurrect text an earlier one cut.
var redactionMarkers = []string{"api_key=", "token=", "password=", "secret="}

const redactedPlaceholder = "[REDACTED]"

// RedactLine truncates everything after the first occurrence of each secret
// marker, at most once per marker. A line without markers is returned as-is.
func RedactLine(line string) string {
	out := line
	for _, marker := range redactionMarkers {
		idx := strings.Index(strings.ToLower(out), marker)
		if idx < 0 {
			continue
		}
		out = out[:idx+len(marker)] + redactedPlaceholder
	}
	return out
}
