package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

var (
	// ErrForbidden is returned when the actor's role lacks the capability.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced message id does not exist.
	ErrNotFound = errors.New("message not found")
	// ErrChatDisabled is returned by Post while the room is disabled.
	ErrChatDisabled = errors.New("chat is disabled")
	// ErrWriteDenied is returned by Post when the author is muted.
	ErrWriteDenied = errors.New("write privilege revoked")
	// ErrEmptyMessage is returned by Post for whitespace-only text.
	ErrEmptyMessage = errors.New("empty message")
)

// Message is a single chat entry. Author is a snapshot taken at send
// time: later role changes never relabel an already-posted message.
// Messages are immutable once created; the only removal paths are
// DeleteOne and Clear.
type Message struct {
	ID        int64
	Author    user.User
	Text      string
	CreatedAt time.Time
}

// Room is the single shared chat log plus the global enabled flag. One
// lock guards both so that "check enabled and canWrite, then append" is
// atomic. Ids are a strictly increasing counter; a timestamp would
// collide for same-instant sends.
type Room struct {
	mu       sync.RWMutex
	enabled  bool
	nextID   int64
	messages []Message
}

// NewRoom creates an empty, enabled chat room.
func NewRoom() *Room {
	return &Room{enabled: true, nextID: 1}
}

// Restore loads persisted state: the enabled flag and the surviving
// messages. The id counter is advanced past the highest restored id so
// ids stay strictly increasing across restarts.
func (r *Room) Restore(enabled bool, msgs []Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enabled = enabled
	r.messages = append(r.messages[:0], msgs...)
	for _, m := range msgs {
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
	}
}

// Enabled reports whether the room currently accepts messages.
func (r *Room) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled turns the chat on or off. Creator only. Takes effect for
// all subsequent posts immediately.
func (r *Room) SetEnabled(actor role.Role, enabled bool) error {
	if !role.CanToggleChat(actor) {
		return fmt.Errorf("%s may not toggle chat: %w", actor, ErrForbidden)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	return nil
}

// Post appends a message authored by the given user snapshot. A disabled
// room rejects everyone, including the creator.
func (r *Room) Post(author user.User, text string) (Message, error) {
	trimmed := strings.TrimSpace(text)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return Message{}, ErrChatDisabled
	}
	if !author.CanWrite {
		return Message{}, fmt.Errorf("user %d: %w", author.ID, ErrWriteDenied)
	}
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}

	m := Message{
		ID:        r.nextID,
		Author:    author,
		Text:      trimmed,
		CreatedAt: time.Now(),
	}
	r.nextID++
	r.messages = append(r.messages, m)
	return m, nil
}

// DeleteOne removes a single message permanently. Creator only. Deleting
// an id that is already gone reports ErrNotFound and changes nothing.
func (r *Room) DeleteOne(actor role.Role, messageID int64) error {
	if !role.CanDeleteMessage(actor) {
		return fmt.Errorf("%s may not delete messages: %w", actor, ErrForbidden)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.messages {
		if m.ID == messageID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete message %d: %w", messageID, ErrNotFound)
}

// Clear empties the log atomically. Creator only. A concurrent Post is
// either fully visible before the clear or fully absent after it.
func (r *Room) Clear(actor role.Role) error {
	if !role.CanClearChat(actor) {
		return fmt.Errorf("%s may not clear chat: %w", actor, ErrForbidden)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	return nil
}

// Messages returns a copy of the log in posting order.
func (r *Room) Messages() []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Len returns the number of messages currently in the log.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages)
}
