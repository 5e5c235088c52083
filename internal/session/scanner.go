package session

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/grovetools/core/pkg/workspace"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// headerLineLimit bounds how many lines are read to find session metadata.
	headerLineLimit    = 100
	maxScanTokenSize   = 1024 * 1024 // 1MB
	defaultParallelism = 8
)

var codexCwdPattern = regexp.MustCompile(`<cwd>(.*)</cwd>`)

// Scanner is responsible for finding and parsing session transcript logs.
type Scanner struct {
	homeDir     string
	parallelism int
	logger      *logrus.Entry
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithHomeDir scans under dir instead of the user's home directory.
func WithHomeDir(dir string) ScannerOption {
	return func(s *Scanner) { s.homeDir = dir }
}

// WithParallelism limits how many logs are read at once.
func WithParallelism(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewScanner creates a new session scanner.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		parallelism: defaultParallelism,
		logger:      grovelogging.NewLogger("agentview.session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan searches for and parses all Claude and Codex session logs, newest
// first.
func (s *Scanner) Scan() ([]SessionInfo, error) {
	return s.ScanContext(context.Background())
}

// ScanContext is Scan with cancellation.
func (s *Scanner) ScanContext(ctx context.Context) ([]SessionInfo, error) {
	homeDir := s.homeDir
	if homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return nil, err
		}
	}

	claudePattern := filepath.Join(homeDir, ".claude", "projects", "*", "*.jsonl")
	claudeMatches, _ := filepath.Glob(claudePattern)

	codexPattern := filepath.Join(homeDir, ".codex", "sessions", "*", "*", "*", "*.jsonl")
	codexMatches, _ := filepath.Glob(codexPattern)

	matches := append(claudeMatches, codexMatches...)
	results := make([]*SessionInfo, len(matches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, logPath := range matches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := s.Inspect(logPath)
			if err != nil {
				s.logger.WithError(err).WithField("path", logPath).Debug("Skipping unreadable log")
				return nil
			}
			results[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(results))
	for _, r := range results {
		if r != nil {
			sessions = append(sessions, *r)
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, nil
}

// Inspect reads the header of a single log file.
func (s *Scanner) Inspect(logPath string) (*SessionInfo, error) {
	stat, err := os.Stat(logPath)
	if err != nil {
		return nil, err
	}

	provider := "claude"
	var sessionID, cwd string
	var startedAt time.Time
	var found bool
	if strings.Contains(filepath.ToSlash(logPath), "/.codex/") {
		provider = "codex"
		sessionID, cwd, startedAt, found = s.parseCodexLog(logPath)
	} else {
		sessionID, cwd, startedAt, found = s.parseClaudeLog(logPath)
	}

	if !found {
		return &SessionInfo{
			SessionID:   strings.TrimSuffix(filepath.Base(logPath), ".jsonl"),
			ProjectName: "unknown",
			ProjectPath: "unknown",
			LogFilePath: logPath,
			StartedAt:   stat.ModTime(),
			ModifiedAt:  stat.ModTime(),
			Provider:    provider,
		}, nil
	}

	projectPath, projectName, worktree, ecosystem := s.parseProjectPath(cwd)
	return &SessionInfo{
		SessionID:   sessionID,
		ProjectName: projectName,
		ProjectPath: projectPath,
		Worktree:    worktree,
		Ecosystem:   ecosystem,
		LogFilePath: logPath,
		StartedAt:   startedAt,
		ModifiedAt:  stat.ModTime(),
		Provider:    provider,
	}, nil
}

func (s *Scanner) parseProjectPath(cwd string) (projectPath, projectName, worktree, ecosystem string) {
	projInfo, err := workspace.GetProjectByPath(cwd)
	if err != nil {
		projectName = filepath.Base(cwd)
		projectPath = cwd
		return
	}

	if projInfo.IsWorktree() {
		worktree = projInfo.Name
		if projInfo.ParentProjectPath != "" {
			projectPath = projInfo.ParentProjectPath
			projectName = filepath.Base(projInfo.ParentProjectPath)
		} else {
			projectPath = projInfo.Path
			projectName = projInfo.Name
		}
	} else {
		projectName = projInfo.Name
		projectPath = projInfo.Path
	}

	if projInfo.RootEcosystemPath != "" {
		ecosystem = filepath.Base(projInfo.RootEcosystemPath)
	} else if projInfo.ParentEcosystemPath != "" {
		ecosystem = filepath.Base(projInfo.ParentEcosystemPath)
	}
	return
}

func newLineScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)
	return scanner
}

func (s *Scanner) parseClaudeLog(logPath string) (sessionID, cwd string, startedAt time.Time, found bool) {
	file, err := os.Open(logPath)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := newLineScanner(file)
	for lineIndex := 0; lineIndex < headerLineLimit && scanner.Scan(); lineIndex++ {
		var msg struct {
			Cwd       string    `json:"cwd"`
			SessionID string    `json:"sessionId"`
			Timestamp time.Time `json:"timestamp"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Cwd != "" && msg.SessionID != "" && !msg.Timestamp.IsZero() {
			return msg.SessionID, msg.Cwd, msg.Timestamp, true
		}
	}
	return
}

func (s *Scanner) parseCodexLog(logPath string) (sessionID, cwd string, startedAt time.Time, found bool) {
	file, err := os.Open(logPath)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := newLineScanner(file)
	for lineIndex := 0; lineIndex < headerLineLimit && scanner.Scan(); lineIndex++ {
		var entry struct {
			Type    string `json:"type"`
			Payload struct {
				ID        string `json:"id"`
				Cwd       string `json:"cwd"`
				Timestamp string `json:"timestamp"`
				Type      string `json:"type"`
				Role      string `json:"role"`
				Content   []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		switch {
		case entry.Type == "session_meta":
			sessionID = entry.Payload.ID
			if entry.Payload.Cwd != "" {
				cwd = entry.Payload.Cwd
			}
			startedAt, _ = time.Parse(time.RFC3339Nano, entry.Payload.Timestamp)
		case entry.Type == "response_item" && entry.Payload.Type == "message" && entry.Payload.Role == "user":
			for _, c := range entry.Payload.Content {
				if m := codexCwdPattern.FindStringSubmatch(c.Text); len(m) > 1 && cwd == "" {
					cwd = m[1]
				}
			}
		}

		if sessionID != "" && cwd != "" {
			return sessionID, cwd, startedAt, true
		}
	}
	return
}
