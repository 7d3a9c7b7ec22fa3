package user

import (
	"time"

	"github.com/velsgot/velsgot/internal/role"
)

// User is a chat participant as the moderation core sees it. Values of
// this type are always snapshots: mutating a copy never affects the
// directory, and messages keep the author snapshot taken at send time.
type User struct {
	ID        int64
	Nickname  string
	Contact   string // opaque to the core (email, messenger handle, ...)
	Role      role.Role
	CanWrite  bool
	CreatedAt time.Time
}
