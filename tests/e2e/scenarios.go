package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

const alphaTranscript = `{"cwd":"/tmp/project-alpha","sessionId":"session-alpha","uuid":"1","parentUuid":null,"type":"user","message":{"role":"user","content":"Hello"},"timestamp":"2025-01-01T12:00:00Z"}
{"uuid":"2","parentUuid":"1","sessionId":"session-alpha","type":"assistant","message":{"id":"m1","role":"assistant","content":[{"type":"text","text":"Hi there!"}]},"timestamp":"2025-01-01T12:00:01Z"}
{"uuid":"3","parentUuid":"2","sessionId":"session-alpha","type":"user","message":{"role":"user","content":"How are you?"},"timestamp":"2025-01-01T12:00:02Z"}
{"uuid":"4","parentUuid":"3","sessionId":"session-alpha","type":"assistant","message":{"id":"m2","role":"assistant","content":[{"type":"text","text":"I'm doing well, thank you!"}]},"timestamp":"2025-01-01T12:00:03Z"}
`

const betaTranscript = `{"cwd":"/tmp/project-beta","sessionId":"session-beta","uuid":"1","parentUuid":null,"type":"user","message":{"role":"user","content":"Test message"},"timestamp":"2025-01-02T10:00:00Z"}
`

const doneLine = `{"uuid":"5","parentUuid":"4","sessionId":"session-alpha","type":"assistant","message":{"id":"m3","role":"assistant","content":[{"type":"text","text":"Build DONE"}]},"timestamp":"2025-01-01T12:00:09Z"}
`

// setupMockClaudeDir creates a mock ~/.claude directory with two sessions.
func setupMockClaudeDir(ctx *harness.Context) error {
	homeDir := ctx.NewDir("home")

	projectsDir := filepath.Join(homeDir, ".claude", "projects", "test-project")
	if err := fs.CreateDir(projectsDir); err != nil {
		return err
	}

	alpha := filepath.Join(projectsDir, "session-alpha.jsonl")
	if err := fs.WriteString(alpha, alphaTranscript); err != nil {
		return fmt.Errorf("failed to write session-alpha.jsonl: %w", err)
	}
	if err := fs.WriteString(filepath.Join(projectsDir, "session-beta.jsonl"), betaTranscript); err != nil {
		return err
	}

	ctx.Set("mock_home", homeDir)
	ctx.Set("alpha_path", alpha)
	return nil
}

// runAgview runs the binary against the mock home.
func runAgview(ctx *harness.Context, args ...string) (*command.Result, error) {
	bin, err := FindProjectBinary()
	if err != nil {
		return nil, err
	}
	cmd := command.New(bin, args...).Env("HOME=" + ctx.GetString("mock_home"))
	result := cmd.Run()
	ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
	return result, nil
}

// AgviewListScenario tests the 'agview list' command
func AgviewListScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agview-list-command",
		Steps: []harness.Step{
			harness.NewStep("Setup mock Claude directory", setupMockClaudeDir),
			harness.NewStep("Run 'agview list'", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "list")
				if err != nil {
					return err
				}
				if result.ExitCode != 0 {
					return fmt.Errorf("agview list failed: %s", result.Stderr)
				}
				if err := assert.Contains(result.Stdout, "SESSION ID", "Should print table header"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "PROVIDER", "Should print provider column"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "session-alpha", "Should list session-alpha"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "project-beta", "Should list project-beta")
			}),
			harness.NewStep("Run 'agview list --json'", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "list", "--json")
				if err != nil {
					return err
				}
				if result.ExitCode != 0 {
					return fmt.Errorf("agview list --json failed: %s", result.Stderr)
				}

				var sessions []map[string]interface{}
				if err := json.Unmarshal([]byte(result.Stdout), &sessions); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				if len(sessions) != 2 {
					return fmt.Errorf("expected 2 sessions in JSON output, got %d", len(sessions))
				}
				for _, session := range sessions {
					for _, field := range []string{"sessionId", "projectName", "startedAt", "provider"} {
						if _, ok := session[field]; !ok {
							return fmt.Errorf("missing %s field in JSON output", field)
						}
					}
				}
				return nil
			}),
			harness.NewStep("Run 'agview list --project alpha'", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "list", "--project", "alpha")
				if err != nil {
					return err
				}
				if result.ExitCode != 0 {
					return fmt.Errorf("agview list --project alpha failed: %s", result.Stderr)
				}
				if err := assert.Contains(result.Stdout, "session-alpha", "Should list session-alpha"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "project-beta", "Should not list project-beta")
			}),
		},
	}
}

// AgviewDumpScenario tests the 'agview dump' command
func AgviewDumpScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agview-dump-command",
		Steps: []harness.Step{
			harness.NewStep("Setup mock Claude directory", setupMockClaudeDir),
			harness.NewStep("Run 'agview dump' by session ID", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "dump", "session-alpha")
				if err != nil {
					return err
				}
				if err := assert.Equal(0, result.ExitCode, "agview dump should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "=== Session: session-alpha ===", "Should print session header"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Hello", "Should render the first user message"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "I'm doing well, thank you!", "Should render the last assistant message")
			}),
			harness.NewStep("Run 'agview dump' by file path", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "dump", ctx.GetString("alpha_path"), "--no-color")
				if err != nil {
					return err
				}
				if err := assert.Equal(0, result.ExitCode, "agview dump <path> should exit successfully"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "\x1b[", "Should not emit escape sequences")
			}),
			harness.NewStep("Run 'agview dump' on an unknown session", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "dump", "no-such-session")
				if err != nil {
					return err
				}
				return assert.Equal(1, result.ExitCode, "Unknown sessions should exit with status 1")
			}),
		},
	}
}

// AgviewTailScenario tests the 'agview tail' command
func AgviewTailScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agview-tail-command",
		Steps: []harness.Step{
			harness.NewStep("Setup mock Claude directory", setupMockClaudeDir),
			harness.NewStep("Run 'agview tail -n 1'", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "tail", "session-alpha", "-n", "1")
				if err != nil {
					return err
				}
				if err := assert.Equal(0, result.ExitCode, "agview tail should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Showing last 1 of 2 turns", "Should show turn count"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "How are you?", "Should show the last turn"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "Hi there!", "Should not show earlier turns")
			}),
		},
	}
}

// AgviewQueryScenario tests the 'agview query' command
func AgviewQueryScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agview-query-command",
		Steps: []harness.Step{
			harness.NewStep("Setup mock Claude directory", setupMockClaudeDir),
			harness.NewStep("Run 'agview query' with role filter", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "query", "session-alpha", "--role", "user")
				if err != nil {
					return err
				}
				if err := assert.Equal(0, result.ExitCode, "agview query should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Found 2 entries", "Should show entry count"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "user:", "Should show user entries")
			}),
			harness.NewStep("Run 'agview query --json'", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "query", "session-alpha", "--role", "assistant", "--json")
				if err != nil {
					return err
				}
				if result.ExitCode != 0 {
					return fmt.Errorf("agview query --json failed: %s", result.Stderr)
				}
				var entries []map[string]interface{}
				if err := json.Unmarshal([]byte(result.Stdout), &entries); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				if len(entries) != 2 {
					return fmt.Errorf("expected 2 assistant entries, got %d", len(entries))
				}
				return assert.Equal("assistant", entries[0]["role"], "Entries should carry their role")
			}),
			harness.NewStep("Run 'agview query' with an invalid role", func(ctx *harness.Context) error {
				result, err := runAgview(ctx, "query", "session-alpha", "--role", "robot")
				if err != nil {
					return err
				}
				return assert.Equal(1, result.ExitCode, "Invalid roles should be rejected")
			}),
		},
	}
}

// AgviewFollowWatchScenario tests that 'agview follow --watch' exits with
// status 3 when new output matches.
func AgviewFollowWatchScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agview-follow-watch",
		Steps: []harness.Step{
			harness.NewStep("Setup mock Claude directory", setupMockClaudeDir),
			harness.NewStep("Run 'agview follow --watch DONE'", func(ctx *harness.Context) error {
				alpha := ctx.GetString("alpha_path")
				appendErr := make(chan error, 1)
				go func() {
					time.Sleep(2 * time.Second)
					f, err := os.OpenFile(alpha, os.O_APPEND|os.O_WRONLY, 0)
					if err != nil {
						appendErr <- err
						return
					}
					_, err = f.WriteString(doneLine)
					if cerr := f.Close(); err == nil {
						err = cerr
					}
					appendErr <- err
				}()

				result, err := runAgview(ctx, "follow", "session-alpha", "--watch", "DONE")
				if err != nil {
					return err
				}
				if err := <-appendErr; err != nil {
					return fmt.Errorf("failed to append to transcript: %w", err)
				}
				if err := assert.Equal(3, result.ExitCode, "A watch match should exit with status 3"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "Build DONE", "Should print the matching line"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "How are you?", "Should not print history without --backlog")
			}),
		},
	}
}
