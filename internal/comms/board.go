// Package comms keeps the short-lived messages agents exchange. Messages are
// display-only: nothing in the simulation reacts to them.
package comms

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/sarsim/internal/world"
)

// CommandCenter is the receiver of reports agents raise on their own.
const CommandCenter = "command"

// ErrInvalidMessage is returned for messages missing a sender, receiver or content.
var ErrInvalidMessage = errors.New("invalid message")

// Message is one sender→receiver text bubble.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Progress returns how far along its lifetime the message is, in [0, 1].
func (m Message) Progress(now time.Time) float64 {
	total := m.ExpiresAt.Sub(m.SentAt)
	if total <= 0 {
		return 1
	}
	p := float64(now.Sub(m.SentAt)) / float64(total)
	return min(max(p, 0), 1)
}

// Board holds messages until their TTL elapses.
type Board struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	messages []Message
}

// NewBoard creates a board expiring messages after ttl.
func NewBoard(ttl time.Duration, clock func() time.Time) *Board {
	if clock == nil {
		clock = time.Now
	}
	return &Board{ttl: ttl, clock: clock}
}

// Add posts a message.
func (b *Board) Add(sender, receiver, content string) (Message, error) {
	if sender == "" || receiver == "" || content == "" {
		return Message{}, fmt.Errorf("%w: sender, receiver and content are required", ErrInvalidMessage)
	}

	now := b.clock()
	msg := Message{
		ID:        uuid.New(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		SentAt:    now,
		ExpiresAt: now.Add(b.ttl),
	}

	b.mu.Lock()
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	return msg, nil
}

// Tick drops expired messages.
func (b *Board) Tick() {
	now := b.clock()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = slices.DeleteFunc(b.messages, func(m Message) bool {
		return now.Sub(m.SentAt) > b.ttl
	})
}

// Active returns messages that have not expired yet, oldest first.
func (b *Board) Active() []Message {
	now := b.clock()

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Message, 0, len(b.messages))
	for _, m := range b.messages {
		if now.Sub(m.SentAt) <= b.ttl {
			out = append(out, m)
		}
	}
	return out
}

// Publish turns notable world events into reports to the command center.
func (b *Board) Publish(ev world.Event) {
	var content string
	switch ev.Kind {
	case world.EventVictimDiscovered:
		content = "found " + ev.VictimID
	case world.EventVictimRescued:
		content = "rescued " + ev.VictimID
	case world.EventTrackLost:
		content = "lost " + ev.VictimID
	case world.EventAgentReturned:
		content = "back at base"
	default:
		return
	}

	if _, err := b.Add(ev.AgentID, CommandCenter, content); err != nil {
		slog.Debug("event not posted", "kind", ev.Kind, "err", err)
	}
}
