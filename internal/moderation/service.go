// Package moderation composes the role matrix, user directory and chat
// room behind single-call operations. Every operation resolves the actor
// once, performs exactly one permission check (inside the component it
// delegates to), applies at most one mutation, and publishes one event on
// success. Failures are sentinel errors; state is untouched when an
// operation fails.
package moderation

import (
	"fmt"

	"github.com/velsgot/velsgot/internal/chat"
	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

// Service is the moderation façade. Construct one per chat room; there is
// no process-wide instance.
type Service struct {
	users  *user.Directory
	room   *chat.Room
	broker *chat.Broker // optional; nil disables event publishing
}

// NewService wires a service over its collaborators.
func NewService(users *user.Directory, room *chat.Room, broker *chat.Broker) *Service {
	return &Service{users: users, room: room, broker: broker}
}

func (s *Service) publish(ev chat.Event) {
	if s.broker != nil {
		s.broker.Publish(ev)
	}
}

func (s *Service) actor(id int64) (user.User, error) {
	u, ok := s.users.Get(id)
	if !ok {
		return user.User{}, fmt.Errorf("actor %d: %w", id, user.ErrNotFound)
	}
	return u, nil
}

// RegisterUser adds a new participant. Registrations always start as a
// plain user; elevation requires a creator calling ChangeUserRole.
func (s *Service) RegisterUser(nickname, contact string) (user.User, error) {
	u, err := s.users.Register(nickname, contact, role.User)
	if err != nil {
		return user.User{}, err
	}
	s.publish(chat.Event{Type: chat.EventUserRegistered, User: &u})
	return u, nil
}

// Adopt admits an identity authenticated by the credential store into
// the live directory, keeping its id. The core trusts the caller: the
// (id, role) pair comes from the identity provider, never from the
// remote peer.
func (s *Service) Adopt(u user.User) {
	s.users.Put(u)
}

// SendMessage posts text to the room on behalf of the actor. The author
// snapshot (nickname, role, write flag) is resolved at send time.
func (s *Service) SendMessage(actorID int64, text string) (chat.Message, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return chat.Message{}, err
	}

	m, err := s.room.Post(actor, text)
	if err != nil {
		return chat.Message{}, err
	}
	s.publish(chat.Event{Type: chat.EventMessagePosted, Message: &m, ActorID: actorID})
	return m, nil
}

// MuteUser revokes the target's write privilege.
func (s *Service) MuteUser(actorID, targetID int64) error {
	return s.setWritePrivilege(actorID, targetID, false)
}

// UnmuteUser restores the target's write privilege.
func (s *Service) UnmuteUser(actorID, targetID int64) error {
	return s.setWritePrivilege(actorID, targetID, true)
}

func (s *Service) setWritePrivilege(actorID, targetID int64, allowed bool) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	if err := s.users.SetWritePrivilege(actor.Role, targetID, allowed); err != nil {
		return err
	}

	target, _ := s.users.Get(targetID)
	evType := chat.EventUserMuted
	if allowed {
		evType = chat.EventUserUnmuted
	}
	s.publish(chat.Event{Type: evType, User: &target, ActorID: actorID})
	return nil
}

// BanUser removes the target from the directory entirely.
func (s *Service) BanUser(actorID, targetID int64) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	// Snapshot before removal so the event can still name the target.
	target, _ := s.users.Get(targetID)

	if err := s.users.Remove(actor.Role, targetID); err != nil {
		return err
	}
	s.publish(chat.Event{Type: chat.EventUserRemoved, User: &target, ActorID: actorID})
	return nil
}

// ChangeUserRole reassigns the target's role. Creator only.
func (s *Service) ChangeUserRole(actorID, targetID int64, newRole role.Role) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	if err := s.users.ChangeRole(actor.Role, targetID, newRole); err != nil {
		return err
	}

	target, _ := s.users.Get(targetID)
	s.publish(chat.Event{Type: chat.EventRoleChanged, User: &target, ActorID: actorID})
	return nil
}

// DeleteMessage removes a single message from the room.
func (s *Service) DeleteMessage(actorID, messageID int64) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	if err := s.room.DeleteOne(actor.Role, messageID); err != nil {
		return err
	}
	s.publish(chat.Event{
		Type:    chat.EventMessageDeleted,
		Message: &chat.Message{ID: messageID},
		ActorID: actorID,
	})
	return nil
}

// ClearChat empties the room.
func (s *Service) ClearChat(actorID int64) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	if err := s.room.Clear(actor.Role); err != nil {
		return err
	}
	s.publish(chat.Event{Type: chat.EventChatCleared, ActorID: actorID})
	return nil
}

// SetChatEnabled turns the room on or off for everyone.
func (s *Service) SetChatEnabled(actorID int64, enabled bool) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	if err := s.room.SetEnabled(actor.Role, enabled); err != nil {
		return err
	}
	s.publish(chat.Event{Type: chat.EventChatToggled, Enabled: enabled, ActorID: actorID})
	return nil
}

// GetUser returns a snapshot of a single user.
func (s *Service) GetUser(id int64) (user.User, bool) {
	return s.users.Get(id)
}

// Users returns a snapshot of all users in registration order.
func (s *Service) Users() []user.User {
	return s.users.List()
}

// FindUsers searches nicknames, case-insensitive substring.
func (s *Service) FindUsers(query string) []user.User {
	return s.users.Find(query)
}

// Messages returns a snapshot of the chat log.
func (s *Service) Messages() []chat.Message {
	return s.room.Messages()
}

// ChatEnabled reports whether the room accepts messages.
func (s *Service) ChatEnabled() bool {
	return s.room.Enabled()
}
