// Package tasks creates and dispatches agent tasks. Dispatch is the only
// state machine in the system: queued -> in_progress -> done|failed, with
// terminal states final and no retries.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OpsDeck/OpsDeck/internal/agents"
	"github.com/OpsDeck/OpsDeck/internal/events"
	"github.com/OpsDeck/OpsDeck/internal/store"
)

// ErrValidation marks a bad request from the caller.
var ErrValidation = errors.New("validation")

// ErrNotFound marks an unknown task id.
var ErrNotFound = errors.New("task not found")

// DispatchTimeout bounds one agent invocation.
const DispatchTimeout = 300 * time.Second

// SheetMirror is the best-effort spreadsheet append capability.
type SheetMirror interface {
	Append(ctx context.Context, sheet string, values []string) error
}

// Dispatcher owns task creation and dispatch against the store.
type Dispatcher struct {
	store  *store.Store
	runner agents.Runner
	sheet  SheetMirror
	events events.Publisher
	logger *slog.Logger
}

// Options wires the dispatcher's collaborators. Sheet and Events may be
// nil; both side effects are optional.
type Options struct {
	Store  *store.Store
	Runner agents.Runner
	Sheet  SheetMirror
	Events events.Publisher
	Logger *slog.Logger
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  opts.Store,
		runner: opts.Runner,
		sheet:  opts.Sheet,
		events: opts.Events,
		logger: logger,
	}
}

// Create appends a new queued task. The agent id is deliberately not
// checked against the live directory, so tasks can address agents that
// are not registered yet.
func (d *Dispatcher) Create(ctx context.Context, title, agentID, details string) (*store.Task, error) {
	title = strings.TrimSpace(title)
	agentID = strings.TrimSpace(agentID)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if agentID == "" {
		return nil, fmt.Errorf("%w: agentId is required", ErrValidation)
	}

	now := time.Now()
	task := store.Task{
		ID:        store.NewTaskID(),
		Title:     title,
		Details:   strings.TrimSpace(details),
		AgentID:   agentID,
		Status:    store.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		Logs:      []store.TaskLog{},
	}
	task.AppendLog(fmt.Sprintf("task created for @%s", agentID))

	data := d.store.Read()
	data.Tasks = append(data.Tasks, task)
	d.store.WriteLogged(data)

	if d.sheet != nil {
		if err := d.sheet.Append(ctx, "Tasks", []string{
			task.ID, task.Title, task.AgentID, task.Status, task.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			d.logger.Debug("task sheet mirror failed", "task", task.ID, "error", err)
		}
	}
	events.Emit(ctx, d.events, d.logger, events.TaskCreated, map[string]string{
		"task_id": task.ID,
		"agent":   task.AgentID,
	})

	return &task, nil
}

// Dispatch runs the task's agent and records the terminal outcome. On
// agent failure the task body is returned alongside the error so the
// caller can still show the failed task.
func (d *Dispatcher) Dispatch(ctx context.Context, id string) (*store.Task, error) {
	data := d.store.Read()
	task := data.TaskByID(id)
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	task.Status = store.StatusInProgress
	task.AppendLog(fmt.Sprintf("dispatching to @%s", task.AgentID))
	d.store.WriteLogged(data)
	events.Emit(ctx, d.events, d.logger, events.TaskDispatched, map[string]string{
		"task_id": task.ID,
		"agent":   task.AgentID,
	})

	reply, err := d.runner.Invoke(ctx, task.AgentID, dispatchPrompt(task), DispatchTimeout)
	if err != nil {
		task.Status = store.StatusFailed
		task.Error = err.Error()
		task.AppendLog(fmt.Sprintf("failed: %v", err))
		d.store.WriteLogged(data)
		events.Emit(ctx, d.events, d.logger, events.TaskFailed, map[string]string{
			"task_id": task.ID,
			"error":   err.Error(),
		})
		out := *task
		return &out, fmt.Errorf("dispatch %s: %w", id, err)
	}

	task.Status = store.StatusDone
	task.Result = reply
	task.AppendLog("completed")
	d.store.WriteLogged(data)
	events.Emit(ctx, d.events, d.logger, events.TaskDone, map[string]string{
		"task_id": task.ID,
	})

	out := *task
	return &out, nil
}

func dispatchPrompt(t *store.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have been assigned a task from the operations dashboard.\n\n")
	fmt.Fprintf(&b, "Task: %s\n", t.Title)
	if t.Details != "" {
		fmt.Fprintf(&b, "Details: %s\n", t.Details)
	}
	b.WriteString("\nDo the work and reply with a concise summary of the result.")
	return b.String()
}
