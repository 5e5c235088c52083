package session

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when no transcript matches a specifier.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo holds structured information about a session transcript
type SessionInfo struct {
	SessionID   string    `json:"sessionId"`
	ProjectName string    `json:"projectName"`
	ProjectPath string    `json:"projectPath"`
	Worktree    string    `json:"worktree,omitempty"`
	Ecosystem   string    `json:"ecosystem,omitempty"`
	LogFilePath string    `json:"logFilePath"`
	StartedAt   time.Time `json:"startedAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Provider    string    `json:"provider"` // "claude" or "codex"
}
