package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store owns the JSON state file and an in-memory snapshot. The snapshot
// is authoritative whenever the file is missing or unreadable, so a broken
// disk never takes the dashboard down.
//
// Concurrent handlers each Read a copy, mutate it and Write it back; the
// later Write wins.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	snapshot Data
}

// Open creates a Store backed by the given file path. The file does not
// need to exist.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:     path,
		logger:   logger,
		snapshot: Data{Tasks: []Task{}, WarRoom: WarRoom{Messages: []Message{}}},
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Read loads the state file. On any failure, a missing file or a document
// that does not parse at all, it returns the last known in-memory snapshot
// and leaves it untouched. The result is always normalized and is a copy
// the caller may mutate freely.
func (s *Store) Read() Data {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return s.snapshotCopy()
	}

	data, err := decodeLenient(raw)
	if err != nil {
		s.logger.Warn("state file unreadable, serving in-memory snapshot", "error", err)
		return s.snapshotCopy()
	}

	s.mu.Lock()
	s.snapshot = cloneData(data)
	s.mu.Unlock()
	return data
}

func (s *Store) snapshotCopy() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneData(s.snapshot)
}

// Write replaces the in-memory snapshot and best-effort persists it to
// disk. Writers are serialized and the file is replaced via temp file +
// rename, so readers never observe a partial document. The returned error
// is for logging only; callers must not fail a request because the file
// could not be written.
func (s *Store) Write(d Data) error {
	normalize(&d)

	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = cloneData(d)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

// WriteLogged is Write with the best-effort contract applied: a persist
// failure is logged and dropped.
func (s *Store) WriteLogged(d Data) {
	if err := s.Write(d); err != nil {
		s.logger.Warn("store persist failed, keeping in-memory copy", "error", err)
	}
}

// rawData mirrors Data field-by-field so each sequence can be decoded
// independently. A field holding the wrong shape degrades to an empty
// sequence instead of poisoning the whole document.
type rawData struct {
	Tasks   json.RawMessage `json:"tasks"`
	WarRoom struct {
		Messages json.RawMessage `json:"messages"`
	} `json:"war_room"`
}

// decodeLenient coerces wrong-shaped fields to empty sequences. An error
// means the document does not parse at all; the caller falls back to the
// snapshot instead of treating the state as empty.
func decodeLenient(raw []byte) (Data, error) {
	var r rawData
	if err := json.Unmarshal(raw, &r); err != nil {
		return Data{}, fmt.Errorf("parse state document: %w", err)
	}

	d := Data{Tasks: []Task{}, WarRoom: WarRoom{Messages: []Message{}}}
	if len(r.Tasks) > 0 {
		var tasks []Task
		if err := json.Unmarshal(r.Tasks, &tasks); err == nil && tasks != nil {
			d.Tasks = tasks
		}
	}
	if len(r.WarRoom.Messages) > 0 {
		var msgs []Message
		if err := json.Unmarshal(r.WarRoom.Messages, &msgs); err == nil && msgs != nil {
			d.WarRoom.Messages = msgs
		}
	}
	normalize(&d)
	return d, nil
}

func normalize(d *Data) {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.WarRoom.Messages == nil {
		d.WarRoom.Messages = []Message{}
	}
	for i := range d.Tasks {
		if d.Tasks[i].Logs == nil {
			d.Tasks[i].Logs = []TaskLog{}
		}
	}
}

func cloneData(d Data) Data {
	out := Data{
		Tasks:   make([]Task, len(d.Tasks)),
		WarRoom: WarRoom{Messages: make([]Message, len(d.WarRoom.Messages))},
	}
	copy(out.WarRoom.Messages, d.WarRoom.Messages)
	for i, t := range d.Tasks {
		logs := make([]TaskLog, len(t.Logs))
		copy(logs, t.Logs)
		t.Logs = logs
		out.Tasks[i] = t
	}
	return out
}
