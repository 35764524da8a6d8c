package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123", "quotes@example.test")
	err := c.Send(context.Background(), Mail{
		To:      "customer@example.test",
		Subject: "Your quote",
		Text:    "total: 180.00",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["from"] != "quotes@example.test" || got["to"] != "customer@example.test" {
		t.Errorf("payload = %#v", got)
	}
}

func TestSendDisabledAndValidation(t *testing.T) {
	c := New("https://mail.example.test", "", "quotes@example.test")
	if err := c.Send(context.Background(), Mail{To: "a@b.test"}); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}

	c = New("https://mail.example.test", "key", "quotes@example.test")
	if err := c.Send(context.Background(), Mail{To: "  "}); err == nil {
		t.Error("expected error for missing recipient")
	}
}
