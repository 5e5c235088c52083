package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/grovetools/agentview/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		var watchErr *cmd.WatchTriggeredError
		if errors.As(err, &watchErr) {
			fmt.Fprintln(os.Stderr, watchErr.Line)
			os.Exit(cmd.ExitWatchTriggered)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
