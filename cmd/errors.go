package cmd

import "fmt"

// ExitWatchTriggered is the process exit code when a watch pattern matched.
const ExitWatchTriggered = 3

// WatchTriggeredError reports that a --watch pattern matched new output.
type WatchTriggeredError struct {
	Pattern string
	Line    string
}

func (e *WatchTriggeredError) Error() string {
	return fmt.Sprintf("watch pattern %q matched: %s", e.Pattern, e.Line)
}
