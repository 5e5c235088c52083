package transcript

import (
	"strings"
	"time"
)

// Decoder converts one provider-specific JSONL line into an Entry.
//
// DecodeLine returns an error only for malformed input. A well-formed line
// that carries nothing representable (or lacks the required id fields)
// yields (nil, nil).
type Decoder interface {
	DecodeLine(line []byte) (Entry, error)

	// Provider returns the provider name.
	Provider() string
}

// DecoderFor returns a fresh decoder for the named provider. Unknown
// providers fall back to the Claude format.
func DecoderFor(provider string, now func() time.Time) Decoder {
	switch strings.ToLower(provider) {
	case "codex":
		return NewCodexDecoder(now)
	default:
		return NewClaudeDecoder(now)
	}
}

// ProviderForPath guesses the provider from a log file location.
func ProviderForPath(path string) string {
	if strings.Contains(path, "/.codex/") {
		return "codex"
	}
	return "claude"
}

// parseTimestamp parses an RFC 3339 timestamp, falling back to now.
func parseTimestamp(raw string, now func() time.Time) time.Time {
	if raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return ts
		}
	}
	return now()
}
