package chat

import (
	"log"
	"sync"

	"github.com/velsgot/velsgot/internal/user"
)

// EventType tags a moderation or chat event.
type EventType string

const (
	EventMessagePosted  EventType = "message-posted"
	EventMessageDeleted EventType = "message-deleted"
	EventChatCleared    EventType = "chat-cleared"
	EventChatToggled    EventType = "chat-toggled"
	EventUserRegistered EventType = "user-registered"
	EventUserMuted      EventType = "user-muted"
	EventUserUnmuted    EventType = "user-unmuted"
	EventUserRemoved    EventType = "user-removed"
	EventRoleChanged    EventType = "role-changed"
	EventNotice         EventType = "notice"
)

// Event is what subscribers (presentation layers, the persistence tap)
// receive after a successful mutation. Fields beyond Type are filled per
// event kind; User and Message are snapshots.
type Event struct {
	Type    EventType
	Message *Message
	User    *user.User
	ActorID int64
	Enabled bool   // for EventChatToggled
	Text    string // for EventNotice
}

// Subscriber receives events on a buffered channel. A subscriber that
// stops draining loses events rather than blocking the publisher.
type Subscriber struct {
	Token string
	Name  string
	Ch    chan Event
}

// Broker fans out events to all subscribers and tracks who is watching
// the stream. Keyed by session token.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*Subscriber)}
}

// Subscribe registers a viewer under its session token.
func (b *Broker) Subscribe(token, name string) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscriber{
		Token: token,
		Name:  name,
		Ch:    make(chan Event, 32),
	}
	b.subs[token] = sub
	return sub
}

// Unsubscribe removes a viewer.
func (b *Broker) Unsubscribe(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Don't close the channel here: publishers may have already
	// snapshotted subscribers and will send concurrently.
	delete(b.subs, token)
}

// Publish delivers an event to every subscriber. Slow subscribers are
// skipped, not waited for.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]*Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	dropped := 0
	for _, sub := range subs {
		select {
		case sub.Ch <- ev:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("chat: dropped %d %s events (slow subscribers)", dropped, ev.Type)
	}
}

// Online returns the display names of all current subscribers.
func (b *Broker) Online() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var names []string
	for _, sub := range b.subs {
		names = append(names, sub.Name)
	}
	return names
}

// Count returns the number of subscribers.
func (b *Broker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
