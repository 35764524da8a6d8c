package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Runner invokes a single agent with a text prompt and returns its reply.
type Runner interface {
	Invoke(ctx context.Context, agentID, prompt string, timeout time.Duration) (string, error)
}

// CLIRunner shells out to the agent CLI. The process is killed when the
// timeout elapses; a timeout is reported as a plain failure, never retried.
type CLIRunner struct {
	bin string
	run execFunc
}

// NewCLIRunner creates a runner for the given CLI binary.
func NewCLIRunner(bin string) *CLIRunner {
	return &CLIRunner{bin: bin, run: runCommand}
}

// Configured reports whether a CLI binary is set.
func (r *CLIRunner) Configured() bool { return strings.TrimSpace(r.bin) != "" }

// cliReply is the JSON envelope the agent CLI prints on stdout.
type cliReply struct {
	Reply string `json:"reply"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Invoke runs `<bin> agent --agent <id> --message <prompt> --json` and
// returns the reply text.
func (r *CLIRunner) Invoke(ctx context.Context, agentID, prompt string, timeout time.Duration) (string, error) {
	if !r.Configured() {
		return "", fmt.Errorf("agent cli not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := r.run(ctx, r.bin,
		"agent",
		"--agent", agentID,
		"--message", prompt,
		"--json",
		"--timeout", strconv.Itoa(int(timeout.Seconds())),
	)
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("agent %s timed out after %s", agentID, timeout)
	}
	if err != nil {
		return "", fmt.Errorf("invoke agent %s: %w", agentID, err)
	}

	var env cliReply
	if err := json.Unmarshal(out, &env); err != nil {
		return "", fmt.Errorf("agent %s returned malformed output: %w", agentID, err)
	}
	if env.Error != "" {
		return "", fmt.Errorf("agent %s: %s", agentID, env.Error)
	}
	reply := env.Reply
	if reply == "" {
		reply = env.Text
	}
	return reply, nil
}
