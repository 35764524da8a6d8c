// Package warroom implements the shared chat thread and its agent
// fan-out: one posted message is broadcast to up to five agents in
// parallel and every target contributes a visible line, real or canned.
package warroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/OpsDeck/OpsDeck/internal/agents"
	"github.com/OpsDeck/OpsDeck/internal/events"
	"github.com/OpsDeck/OpsDeck/internal/mentions"
	"github.com/OpsDeck/OpsDeck/internal/store"
)

// ErrValidation marks a bad request from the caller.
var ErrValidation = errors.New("validation")

const (
	// SkipSentinel is the literal reply an agent uses to stay silent.
	SkipSentinel = "REPLY_SKIP"
	// MaxTargets caps one fan-out.
	MaxTargets = 5
	// MaxReplyRunes truncates agent replies.
	MaxReplyRunes = 2000
	// ThreadWindow is the trailing message window returned to callers.
	ThreadWindow = 120
	// DefaultReplyTimeout bounds one agent reply.
	DefaultReplyTimeout = 60 * time.Second
)

// RosterLister yields the current agent roster.
type RosterLister interface {
	List(ctx context.Context) ([]agents.Agent, error)
}

// Notifier mirrors posted messages to an external channel.
type Notifier interface {
	Post(ctx context.Context, author, text string) error
}

// Room coordinates the war-room thread.
type Room struct {
	store        *store.Store
	directory    RosterLister
	runner       agents.Runner
	notifier     Notifier
	events       events.Publisher
	logger       *slog.Logger
	replyTimeout time.Duration
}

// Options wires the room's collaborators. Notifier and Events may be nil.
type Options struct {
	Store        *store.Store
	Directory    RosterLister
	Runner       agents.Runner
	Notifier     Notifier
	Events       events.Publisher
	Logger       *slog.Logger
	ReplyTimeout time.Duration
}

// New creates a Room.
func New(opts Options) *Room {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ReplyTimeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	return &Room{
		store:        opts.Store,
		directory:    opts.Directory,
		runner:       opts.Runner,
		notifier:     opts.Notifier,
		events:       opts.Events,
		logger:       logger,
		replyTimeout: timeout,
	}
}

// PostResult is the aggregate fan-out outcome.
type PostResult struct {
	OK      bool            `json:"ok"`
	Message store.Message   `json:"message"`
	Thread  []store.Message `json:"thread"`
}

// Thread returns the trailing window of the thread.
func (r *Room) Thread() []store.Message {
	data := r.store.Read()
	return data.WarRoom.Tail(ThreadWindow)
}

// Post appends the author's message, fans it out to the resolved targets
// in parallel and appends each reply (or canned fallback) as it lands.
// All targets settle before the result is returned and the store is
// persisted once.
func (r *Room) Post(ctx context.Context, author, text string) (*PostResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if strings.TrimSpace(author) == "" {
		author = "operator"
	}

	data := r.store.Read()
	original := store.Message{
		ID:        store.NewMessageID(""),
		Timestamp: time.Now(),
		Author:    author,
		Text:      text,
	}
	data.WarRoom.Messages = append(data.WarRoom.Messages, original)

	targets := r.resolveTargets(ctx, text)

	type outcome struct {
		agentID string
		text    string
		skip    bool
	}
	results := make(chan outcome, len(targets))
	var wg sync.WaitGroup
	for _, id := range targets {
		wg.Add(1)
		go func(agentID string) {
			defer wg.Done()
			reply, err := r.runner.Invoke(ctx, agentID, fanoutPrompt(author, text), r.replyTimeout)
			if err != nil {
				r.logger.Debug("fan-out call failed, using fallback line", "agent", agentID, "error", err)
				results <- outcome{agentID: agentID, text: fallbackLine(agentID)}
				return
			}
			reply = strings.TrimSpace(reply)
			if reply == SkipSentinel {
				results <- outcome{agentID: agentID, skip: true}
				return
			}
			results <- outcome{agentID: agentID, text: truncate(reply, MaxReplyRunes)}
		}(id)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Completion order, not target order.
	for res := range results {
		if res.skip {
			continue
		}
		data.WarRoom.Messages = append(data.WarRoom.Messages, store.Message{
			ID:        store.NewMessageID(res.agentID),
			Timestamp: time.Now(),
			Author:    res.agentID,
			Text:      res.text,
			ParentID:  original.ID,
		})
	}

	r.store.WriteLogged(data)

	if r.notifier != nil {
		if err := r.notifier.Post(ctx, author, text); err != nil {
			r.logger.Debug("war-room mirror failed", "error", err)
		}
	}
	events.Emit(ctx, r.events, r.logger, events.WarRoomPosted, map[string]string{
		"author":  author,
		"targets": strings.Join(targets, ","),
	})

	return &PostResult{
		OK:      true,
		Message: original,
		Thread:  data.WarRoom.Tail(ThreadWindow),
	}, nil
}

// resolveTargets picks the mentioned agents, or the default broadcast
// list when nothing resolves, capped at MaxTargets.
func (r *Room) resolveTargets(ctx context.Context, text string) []string {
	roster, err := r.directory.List(ctx)
	if err != nil || len(roster) == 0 {
		roster = agents.FallbackRoster()
	}
	ids := make([]string, 0, len(roster))
	for _, a := range roster {
		ids = append(ids, a.ID)
	}

	targets := mentions.Extract(text, ids)
	if len(targets) == 0 {
		targets = append([]string{}, agents.DefaultBroadcast...)
	}
	if len(targets) > MaxTargets {
		targets = targets[:MaxTargets]
	}
	return targets
}

func fanoutPrompt(author, text string) string {
	return fmt.Sprintf(
		"War room message from %s:\n\n%s\n\nReply with one concise, useful contribution to the thread. If you have nothing to add, reply with exactly %s.",
		author, text, SkipSentinel,
	)
}

var fallbackLines = map[string]string{
	"main":     "Noted. I'll coordinate follow-ups once I'm reachable again.",
	"codex":    "Can't reach my session right now — flagging this for when I'm back.",
	"research": "Offline at the moment; I'll dig into this as soon as I reconnect.",
	"writer":   "Not available right now, I'll draft something when I'm back online.",
	"ops":      "No live session — queuing this on my side.",
	"scout":    "Out of range right now, will scan this thread when I return.",
}

// fallbackLine is the canned contribution for an unreachable agent, so
// the thread never looks hung on a failed call.
func fallbackLine(agentID string) string {
	if line, ok := fallbackLines[agentID]; ok {
		return line
	}
	return fmt.Sprintf("(%s is unreachable right now and will catch up later.)", agentID)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
