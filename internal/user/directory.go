package user

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/velsgot/velsgot/internal/role"
)

var (
	// ErrNotFound is returned when a referenced user id is not in the directory.
	ErrNotFound = errors.New("user not found")
	// ErrForbidden is returned when the actor's role lacks the capability
	// for this target.
	ErrForbidden = errors.New("forbidden")
)

// Directory is the in-memory registry of active users. One lock guards the
// whole registry so that check-then-act sequences (look up target role,
// then mutate) are atomic. Every accessor returns copies; callers never
// see live references.
type Directory struct {
	mu     sync.RWMutex
	users  map[int64]*User
	order  []int64
	nextID int64
}

// NewDirectory creates an empty user directory.
func NewDirectory() *Directory {
	return &Directory{
		users:  make(map[int64]*User),
		nextID: 1,
	}
}

// Register adds a new user with a fresh id and write privilege enabled.
// The role is taken as given: callers on the public path must pass
// role.User and elevate later through ChangeRole. Only the bootstrap and
// restore paths pass anything else.
func (d *Directory) Register(nickname, contact string, r role.Role) (User, error) {
	if !r.Valid() {
		return User{}, fmt.Errorf("register %q: %w: %q", nickname, role.ErrUnknownRole, string(r))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	u := &User{
		ID:        d.nextID,
		Nickname:  nickname,
		Contact:   contact,
		Role:      r,
		CanWrite:  true,
		CreatedAt: time.Now(),
	}
	d.nextID++
	d.users[u.ID] = u
	d.order = append(d.order, u.ID)
	return *u, nil
}

// Restore loads previously persisted users, keeping their ids. Ids are
// never reused: the allocator is advanced past the highest restored id.
func (d *Directory) Restore(users []User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range users {
		d.put(u)
	}
}

// Put inserts or replaces a user under its existing id. This is the path
// for identities authenticated outside the directory (the credential
// store); Register remains the path for brand-new participants.
func (d *Directory) Put(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(u)
}

func (d *Directory) put(u User) {
	if _, exists := d.users[u.ID]; !exists {
		d.order = append(d.order, u.ID)
	}
	cp := u
	d.users[cp.ID] = &cp
	if cp.ID >= d.nextID {
		d.nextID = cp.ID + 1
	}
}

// Get returns a snapshot of the user with the given id.
func (d *Directory) Get(id int64) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// List returns all users in insertion order.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.users[id])
	}
	return out
}

// Find returns users whose nickname contains the query, case-insensitive,
// in insertion order. An empty result is not an error.
func (d *Directory) Find(query string) []User {
	q := strings.ToLower(query)

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []User
	for _, id := range d.order {
		u := d.users[id]
		if strings.Contains(strings.ToLower(u.Nickname), q) {
			out = append(out, *u)
		}
	}
	return out
}

// SetWritePrivilege revokes or restores a user's ability to post.
// The actor must hold mute authority over the target's role.
func (d *Directory) SetWritePrivilege(actor role.Role, targetID int64, allowed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	target, ok := d.users[targetID]
	if !ok {
		return fmt.Errorf("set write privilege for user %d: %w", targetID, ErrNotFound)
	}
	if !role.CanMute(actor, target.Role) {
		return fmt.Errorf("%s may not mute %s: %w", actor, target.Role, ErrForbidden)
	}
	target.CanWrite = allowed
	return nil
}

// ChangeRole reassigns a user's role. Creator only.
func (d *Directory) ChangeRole(actor role.Role, targetID int64, newRole role.Role) error {
	if !newRole.Valid() {
		return fmt.Errorf("change role of user %d: %w: %q", targetID, role.ErrUnknownRole, string(newRole))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	target, ok := d.users[targetID]
	if !ok {
		return fmt.Errorf("change role of user %d: %w", targetID, ErrNotFound)
	}
	if !role.CanChangeRole(actor) {
		return fmt.Errorf("%s may not change roles: %w", actor, ErrForbidden)
	}
	target.Role = newRole
	return nil
}

// Remove deletes a user from the directory. The actor must hold removal
// authority over the target's role. The id is never reused.
func (d *Directory) Remove(actor role.Role, targetID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	target, ok := d.users[targetID]
	if !ok {
		return fmt.Errorf("remove user %d: %w", targetID, ErrNotFound)
	}
	if !role.CanRemoveUser(actor, target.Role) {
		return fmt.Errorf("%s may not remove %s: %w", actor, target.Role, ErrForbidden)
	}

	delete(d.users, targetID)
	for i, id := range d.order {
		if id == targetID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of registered users.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
