package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppendPostsRow(t *testing.T) {
	var got struct {
		Sheet  string   `json:"sheet"`
		Values []string `json:"values"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "sekrit")
	if err := c.Append(context.Background(), "Tasks", []string{"task-1", "fix boiler", "codex"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got.Sheet != "Tasks" || len(got.Values) != 3 {
		t.Errorf("unexpected payload: %#v", got)
	}
	if auth != "Bearer sekrit" {
		t.Errorf("auth header = %q", auth)
	}
}

func TestAppendDisabled(t *testing.T) {
	c := New("", "")
	if c.Configured() {
		t.Error("empty URL should not be configured")
	}
	if err := c.Append(context.Background(), "Tasks", nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestAppendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if err := c.Append(context.Background(), "Tasks", []string{"row"}); err == nil {
		t.Error("expected error on non-2xx status")
	}
}
