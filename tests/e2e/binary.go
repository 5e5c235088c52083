package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindProjectBinary locates bin/agview in the nearest ancestor directory
// holding a go.mod. AGVIEW_BINARY overrides the search.
func FindProjectBinary() (string, error) {
	if p := os.Getenv("AGVIEW_BINARY"); p != "" {
		return p, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			bin := filepath.Join(dir, "bin", "agview")
			if _, err := os.Stat(bin); err != nil {
				return "", fmt.Errorf("agview binary not found at %s (build it with 'go build -o bin/agview .'): %w", bin, err)
			}
			return bin, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root from working directory")
		}
		dir = parent
	}
}
