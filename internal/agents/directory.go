package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const listTimeout = 10 * time.Second

// Directory lists agents and their sessions via the external agent CLI.
type Directory struct {
	bin    string
	logger *slog.Logger
	run    execFunc
}

// NewDirectory creates a Directory talking to the given CLI binary.
func NewDirectory(bin string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{bin: bin, logger: logger, run: runCommand}
}

// Configured reports whether a CLI binary is set.
func (d *Directory) Configured() bool { return strings.TrimSpace(d.bin) != "" }

// List returns the known agents. Callers substitute FallbackRoster when
// this fails.
func (d *Directory) List(ctx context.Context) ([]Agent, error) {
	if !d.Configured() {
		return nil, fmt.Errorf("agent cli not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	out, err := d.run(ctx, d.bin, "agents", "list", "--json")
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	list, err := decodeAgentList(out)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Sessions returns the active sessions per agent id. An agent whose
// lookup fails gets an empty list; one broken agent never fails the
// whole call.
func (d *Directory) Sessions(ctx context.Context, roster []Agent) map[string][]Session {
	out := make(map[string][]Session, len(roster))
	for _, a := range roster {
		out[a.ID] = []Session{}
		if !d.Configured() {
			continue
		}
		sessions, err := d.listSessions(ctx, a.ID)
		if err != nil {
			d.logger.Debug("session lookup degraded to empty", "agent", a.ID, "error", err)
			continue
		}
		out[a.ID] = sessions
	}
	return out
}

func (d *Directory) listSessions(ctx context.Context, agentID string) ([]Session, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	raw, err := d.run(ctx, d.bin, "sessions", "list", "--agent", agentID, "--json")
	if err != nil {
		return nil, err
	}
	var sessions []Session
	if err := json.Unmarshal(raw, &sessions); err == nil {
		return sessions, nil
	}
	var wrapped struct {
		Sessions []Session `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse sessions for %s: %w", agentID, err)
	}
	if wrapped.Sessions == nil {
		wrapped.Sessions = []Session{}
	}
	return wrapped.Sessions, nil
}

// decodeAgentList accepts either a bare JSON array or an {"agents": [...]}
// envelope, since agent CLIs differ on this.
func decodeAgentList(raw []byte) ([]Agent, error) {
	var list []Agent
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Agents []Agent `json:"agents"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse agent list: %w", err)
	}
	if wrapped.Agents == nil {
		return nil, fmt.Errorf("parse agent list: no agents field")
	}
	return wrapped.Agents, nil
}
