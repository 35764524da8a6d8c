// Package notify mirrors war-room traffic to a Slack channel so operators
// who live in Slack see the same thread. Strictly best-effort.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// slackAPI is the subset of the Slack client we use; narrowed for tests.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts war-room lines into one Slack channel.
type SlackNotifier struct {
	api     slackAPI
	channel string
}

// NewSlack creates a notifier. Empty token or channel yields a disabled
// notifier whose Post is a no-op returning nil.
func NewSlack(token, channel string) *SlackNotifier {
	n := &SlackNotifier{channel: strings.TrimSpace(channel)}
	if strings.TrimSpace(token) != "" && n.channel != "" {
		n.api = slack.New(token)
	}
	return n
}

// Configured reports whether the notifier will actually post.
func (n *SlackNotifier) Configured() bool { return n.api != nil }

// Post mirrors one war-room message.
func (n *SlackNotifier) Post(ctx context.Context, author, text string) error {
	if !n.Configured() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	line := fmt.Sprintf("*%s*: %s", author, text)
	_, _, err := n.api.PostMessageContext(ctx, n.channel, slack.MsgOptionText(line, false))
	if err != nil {
		return fmt.Errorf("slack mirror: %w", err)
	}
	return nil
}
