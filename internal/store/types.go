// Package store holds the task and war-room state for the dashboard,
// persisted as a single JSON document with an in-memory fallback.
package store

import (
	"fmt"
	"time"
)

// Task statuses. queued -> in_progress -> done|failed; terminal states
// are final and tasks are never deleted.
const (
	StatusQueued     = "queued"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// TaskLog is one append-only log line on a task.
type TaskLog struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// Task is a unit of work addressed to a single agent.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Details   string    `json:"details,omitempty"`
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Logs      []TaskLog `json:"logs"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// AppendLog adds a log line and bumps UpdatedAt.
func (t *Task) AppendLog(text string) {
	now := time.Now()
	t.Logs = append(t.Logs, TaskLog{Timestamp: now, Text: text})
	t.UpdatedAt = now
}

// Message is one entry in the war-room thread. ParentID links an agent
// reply back to the message it answers.
type Message struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	ParentID  string    `json:"parent_id,omitempty"`
}

// WarRoom is the shared append-only chat thread.
type WarRoom struct {
	Messages []Message `json:"messages"`
}

// Tail returns the trailing n messages.
func (w WarRoom) Tail(n int) []Message {
	if len(w.Messages) <= n {
		return w.Messages
	}
	return w.Messages[len(w.Messages)-n:]
}

// Data is the aggregate persisted document.
type Data struct {
	Tasks   []Task  `json:"tasks"`
	WarRoom WarRoom `json:"war_room"`
}

// TaskByID returns a pointer into Tasks, or nil.
func (d *Data) TaskByID(id string) *Task {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i]
		}
	}
	return nil
}

// NewTaskID returns a time-derived opaque task id.
func NewTaskID() string {
	return fmt.Sprintf("task-%d", time.Now().UnixNano())
}

// NewMessageID returns a time-derived message id. author is appended for
// synthesized agent replies so concurrent replies stay unique.
func NewMessageID(author string) string {
	if author == "" {
		return fmt.Sprintf("msg-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("msg-%d-%s", time.Now().UnixNano(), author)
}
