package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveSessionInfo finds a session's metadata from a specifier, which can
// be a log file path, a full session ID, or a unique session ID prefix.
// Paths are checked first since they need no directory scan.
func ResolveSessionInfo(spec string, opts ...ScannerOption) (*SessionInfo, error) {
	scanner := NewScanner(opts...)

	if strings.HasSuffix(spec, ".jsonl") || strings.ContainsRune(spec, filepath.Separator) {
		if stat, err := os.Stat(spec); err == nil && !stat.IsDir() {
			abs, err := filepath.Abs(spec)
			if err != nil {
				abs = spec
			}
			return scanner.Inspect(abs)
		}
	}

	allSessions, err := scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan for sessions: %w", err)
	}

	var prefixMatches []int
	for i, s := range allSessions {
		if s.SessionID == spec {
			return &allSessions[i], nil
		}
		if spec != "" && strings.HasPrefix(s.SessionID, spec) {
			prefixMatches = append(prefixMatches, i)
		}
	}

	switch len(prefixMatches) {
	case 1:
		return &allSessions[prefixMatches[0]], nil
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, spec)
	default:
		return nil, fmt.Errorf("session prefix %q is ambiguous (%d matches)", spec, len(prefixMatches))
	}
}
