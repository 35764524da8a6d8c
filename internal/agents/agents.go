// Package agents wraps the external agent CLI: listing the roster and
// sessions, and invoking a single agent with a prompt. The CLI is an
// optional collaborator; every call degrades instead of crashing.
package agents

import (
	"context"
	"os/exec"
)

// Agent is one entry in the agent roster.
type Agent struct {
	ID    string `json:"id"`
	Model string `json:"model,omitempty"`
}

// Session is an active session of one agent, as reported by the CLI.
type Session struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// OrchestratorID is the primary orchestrator agent. It is excluded from
// the default war-room broadcast so a broadcast does not talk to itself.
const OrchestratorID = "main"

// DefaultBroadcast is the war-room target list used when a post contains
// no resolvable mentions.
var DefaultBroadcast = []string{"codex", "research", "writer", "ops", "scout"}

// FallbackRoster is the fixed demo roster used when the agent CLI is
// unreachable. It keeps the dashboard usable with empty session lists.
func FallbackRoster() []Agent {
	return []Agent{
		{ID: "main", Model: "opus"},
		{ID: "codex", Model: "codex-large"},
		{ID: "research", Model: "sonnet"},
		{ID: "writer", Model: "sonnet"},
		{ID: "ops", Model: "haiku"},
		{ID: "scout", Model: "haiku"},
	}
}

// execFunc runs a command and returns its stdout. Swapped out in tests.
type execFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
