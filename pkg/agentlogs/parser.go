// Package agentlogs is the public API for reading agent transcripts.
package agentlogs

import (
	"fmt"
	"time"

	"github.com/grovetools/agentview/internal/session"
	"github.com/grovetools/agentview/internal/transcript"
)

type (
	Entry        = transcript.Entry
	Conversation = transcript.Conversation
	Turn         = transcript.Turn
	ParseError   = transcript.ParseError
	SessionInfo  = session.SessionInfo
)

var (
	ErrEmptyTranscript = transcript.ErrEmptyTranscript
	ErrSessionNotFound = session.ErrSessionNotFound
)

// ParseFile parses a whole transcript file. The decoder is chosen from the
// file's location. Lines that fail to decode are returned as ParseErrors
// alongside the conversation.
func ParseFile(path string) (*Conversation, []ParseError, error) {
	parser := transcript.NewParser(
		transcript.WithDecoder(transcript.DecoderFor(transcript.ProviderForPath(path), time.Now)),
	)
	entries, errs, err := parser.ParseFile(path)
	if err != nil {
		return nil, errs, err
	}
	return transcript.NewConversation("", entries), errs, nil
}

// BuildTurns groups entries into turns.
func BuildTurns(entries []Entry) []Turn {
	return transcript.BuildTurns(entries)
}

// FindSession resolves a session ID, ID prefix or log path.
func FindSession(spec string) (*SessionInfo, error) {
	return session.ResolveSessionInfo(spec)
}

// GetTranscriptPath returns the log file path for a session ID.
func GetTranscriptPath(sessionID string) (string, error) {
	info, err := session.ResolveSessionInfo(sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve session %s: %w", sessionID, err)
	}
	return info.LogFilePath, nil
}
