package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadMissingFileReturnsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "state.json"), nil)

	d := s.Read()
	if d.Tasks == nil || len(d.Tasks) != 0 {
		t.Fatalf("expected empty tasks, got %#v", d.Tasks)
	}
	if d.WarRoom.Messages == nil || len(d.WarRoom.Messages) != 0 {
		t.Fatalf("expected empty messages, got %#v", d.WarRoom.Messages)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "state.json"), nil)

	d := s.Read()
	d.Tasks = append(d.Tasks, Task{
		ID:      NewTaskID(),
		Title:   "fix the boiler quote",
		AgentID: "codex",
		Status:  StatusQueued,
	})
	d.WarRoom.Messages = append(d.WarRoom.Messages, Message{
		ID:     NewMessageID(""),
		Author: "operator",
		Text:   "morning all",
	})
	if err := s.Write(d); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := s.Read()
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "fix the boiler quote" {
		t.Fatalf("tasks not persisted: %#v", got.Tasks)
	}
	if got.Tasks[0].Logs == nil {
		t.Fatal("task logs should be normalized to empty, not nil")
	}
	if len(got.WarRoom.Messages) != 1 {
		t.Fatalf("messages not persisted: %#v", got.WarRoom.Messages)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away after a successful write")
	}
}

func TestReadCoercesWrongShapedFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"wrong task shape", `{"tasks": "oops", "war_room": {"messages": 42}}`},
		{"null document", `null`},
		{"null fields", `{"tasks": null, "war_room": {"messages": null}}`},
		{"missing war room", `{"tasks": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			if err := os.WriteFile(path, []byte(tc.body), 0600); err != nil {
				t.Fatal(err)
			}
			s := Open(path, nil)
			d := s.Read()
			if d.Tasks == nil || len(d.Tasks) != 0 {
				t.Errorf("tasks = %#v, want empty", d.Tasks)
			}
			if d.WarRoom.Messages == nil || len(d.WarRoom.Messages) != 0 {
				t.Errorf("messages = %#v, want empty", d.WarRoom.Messages)
			}
		})
	}
}

func TestReadCorruptContentFallsBackToSnapshot(t *testing.T) {
	for _, body := range []string{"", "][ definitely not json"} {
		path := filepath.Join(t.TempDir(), "state.json")
		s := Open(path, nil)

		d := s.Read()
		d.Tasks = append(d.Tasks, Task{ID: "task-9", Title: "survive corruption", AgentID: "ops", Status: StatusQueued})
		if err := s.Write(d); err != nil {
			t.Fatalf("write: %v", err)
		}

		if err := os.WriteFile(path, []byte(body), 0600); err != nil {
			t.Fatal(err)
		}

		got := s.Read()
		if len(got.Tasks) != 1 || got.Tasks[0].ID != "task-9" {
			t.Fatalf("body %q: invalid content must fall back to the snapshot, got %#v", body, got.Tasks)
		}
		// The snapshot itself must survive the corrupt read.
		again := s.Read()
		if len(again.Tasks) != 1 || again.Tasks[0].ID != "task-9" {
			t.Fatalf("body %q: snapshot clobbered by corrupt read, got %#v", body, again.Tasks)
		}
	}
}

func TestReadFallsBackToSnapshotWhenFileVanishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := Open(path, nil)

	d := s.Read()
	d.Tasks = append(d.Tasks, Task{ID: "task-1", Title: "survive", AgentID: "ops", Status: StatusQueued})
	if err := s.Write(d); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	got := s.Read()
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "task-1" {
		t.Fatalf("expected snapshot fallback, got %#v", got.Tasks)
	}
}

func TestWriteFailureKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	// Point the store at a path whose parent is a file, so persist fails.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	s := Open(filepath.Join(blocker, "state.json"), nil)

	d := s.Read()
	d.Tasks = append(d.Tasks, Task{ID: "task-2", Title: "still here", AgentID: "ops", Status: StatusQueued})
	if err := s.Write(d); err == nil {
		t.Fatal("expected persist error")
	}

	got := s.Read()
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "task-2" {
		t.Fatalf("in-memory copy should survive persist failure, got %#v", got.Tasks)
	}
}

func TestReadReturnsIndependentCopies(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "state.json"), nil)
	d := s.Read()
	d.Tasks = append(d.Tasks, Task{ID: "task-3", Title: "original", AgentID: "ops", Status: StatusQueued, Logs: []TaskLog{}})
	if err := s.Write(d); err != nil {
		t.Fatalf("write: %v", err)
	}

	a := s.Read()
	a.Tasks[0].Title = "mutated"
	a.Tasks[0].AppendLog("local only")

	b := s.Read()
	if b.Tasks[0].Title != "original" {
		t.Error("mutation of one copy leaked into another")
	}
	if len(b.Tasks[0].Logs) != 0 {
		t.Error("log append on one copy leaked into another")
	}
}

func TestWarRoomTail(t *testing.T) {
	w := WarRoom{}
	for i := 0; i < 130; i++ {
		w.Messages = append(w.Messages, Message{ID: NewMessageID(""), Timestamp: time.Now()})
	}
	if got := len(w.Tail(120)); got != 120 {
		t.Fatalf("tail(120) = %d", got)
	}
	if got := len(w.Tail(500)); got != 130 {
		t.Fatalf("tail(500) = %d", got)
	}
	if w.Tail(120)[0].ID != w.Messages[10].ID {
		t.Error("tail should keep the most recent messages")
	}
}
