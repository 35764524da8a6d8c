package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/slack-go/slack"
)

type fakeSlack struct {
	calls   int
	channel string
	err     error
}

func (f *fakeSlack) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.calls++
	f.channel = channelID
	return channelID, "ts", f.err
}

func TestPostDisabledIsNoop(t *testing.T) {
	n := NewSlack("", "")
	if n.Configured() {
		t.Fatal("notifier without token should be disabled")
	}
	if err := n.Post(context.Background(), "operator", "hello"); err != nil {
		t.Fatalf("disabled post must be a silent no-op, got %v", err)
	}
}

func TestPostMirrorsMessage(t *testing.T) {
	f := &fakeSlack{}
	n := &SlackNotifier{api: f, channel: "C123"}

	if err := n.Post(context.Background(), "codex", "done"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if f.calls != 1 || f.channel != "C123" {
		t.Errorf("unexpected call: calls=%d channel=%q", f.calls, f.channel)
	}

	f.err = fmt.Errorf("channel_not_found")
	if err := n.Post(context.Background(), "codex", "done"); err == nil {
		t.Error("expected wrapped slack error")
	}
}
