package user

import (
	"errors"
	"testing"

	"github.com/velsgot/velsgot/internal/role"
)

func TestRegisterAssignsFreshIDs(t *testing.T) {
	d := NewDirectory()

	a, err := d.Register("Alice", "", role.User)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	b, err := d.Register("Bob", "bob@example.com", role.User)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if a.ID == b.ID {
		t.Fatalf("ids must be unique, both %d", a.ID)
	}
	if !a.CanWrite || !b.CanWrite {
		t.Fatal("new users must default to canWrite=true")
	}

	if err := d.Remove(role.Creator, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	c, err := d.Register("Carol", "", role.User)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.ID == a.ID {
		t.Fatalf("id %d was reused after removal", a.ID)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	d := NewDirectory()
	if _, err := d.Register("Eve", "", role.Role("overlord")); !errors.Is(err, role.ErrUnknownRole) {
		t.Fatalf("error = %v, want ErrUnknownRole", err)
	}
	if d.Count() != 0 {
		t.Fatal("failed registration must not mutate the directory")
	}
}

func TestFindCaseInsensitiveInsertionOrder(t *testing.T) {
	d := NewDirectory()
	for _, nick := range []string{"StreamFan", "Moderator", "fanatic", "Quiet"} {
		if _, err := d.Register(nick, "", role.User); err != nil {
			t.Fatalf("register %s: %v", nick, err)
		}
	}

	got := d.Find("FAN")
	if len(got) != 2 {
		t.Fatalf("Find(FAN) returned %d users, want 2", len(got))
	}
	if got[0].Nickname != "StreamFan" || got[1].Nickname != "fanatic" {
		t.Fatalf("results out of insertion order: %q, %q", got[0].Nickname, got[1].Nickname)
	}

	if res := d.Find("nobody"); len(res) != 0 {
		t.Fatalf("Find(nobody) = %v, want empty", res)
	}
}

func TestSetWritePrivilege(t *testing.T) {
	d := NewDirectory()
	target, _ := d.Register("Target", "", role.Admin)

	// Admin cannot mute a fellow admin.
	err := d.SetWritePrivilege(role.Admin, target.ID, false)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
	if u, _ := d.Get(target.ID); !u.CanWrite {
		t.Fatal("failed mute must not change canWrite")
	}

	// Senior admin can.
	if err := d.SetWritePrivilege(role.SeniorAdmin, target.ID, false); err != nil {
		t.Fatalf("senior-admin mute: %v", err)
	}
	if u, _ := d.Get(target.ID); u.CanWrite {
		t.Fatal("mute did not stick")
	}

	if err := d.SetWritePrivilege(role.Creator, target.ID, true); err != nil {
		t.Fatalf("creator unmute: %v", err)
	}
	if u, _ := d.Get(target.ID); !u.CanWrite {
		t.Fatal("unmute did not stick")
	}

	err = d.SetWritePrivilege(role.Creator, 9999, false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestChangeRole(t *testing.T) {
	d := NewDirectory()
	target, _ := d.Register("Target", "", role.User)

	if err := d.ChangeRole(role.SeniorAdmin, target.ID, role.Admin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
	if err := d.ChangeRole(role.Creator, target.ID, role.Role("boss")); !errors.Is(err, role.ErrUnknownRole) {
		t.Fatalf("error = %v, want ErrUnknownRole", err)
	}
	if err := d.ChangeRole(role.Creator, 404, role.Admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	if err := d.ChangeRole(role.Creator, target.ID, role.SeniorAdmin); err != nil {
		t.Fatalf("creator change role: %v", err)
	}
	if u, _ := d.Get(target.ID); u.Role != role.SeniorAdmin {
		t.Fatalf("role = %s, want senior-admin", u.Role)
	}
}

func TestRemove(t *testing.T) {
	d := NewDirectory()
	plain, _ := d.Register("Plain", "", role.User)
	senior, _ := d.Register("Senior", "", role.SeniorAdmin)

	if err := d.Remove(role.Admin, senior.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin removing senior-admin: error = %v, want ErrForbidden", err)
	}
	if err := d.Remove(role.Admin, plain.ID); err != nil {
		t.Fatalf("admin removing user: %v", err)
	}
	if _, ok := d.Get(plain.ID); ok {
		t.Fatal("removed user still present")
	}
	if err := d.Remove(role.Admin, plain.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove: error = %v, want ErrNotFound", err)
	}

	if err := d.Remove(role.Creator, senior.ID); err != nil {
		t.Fatalf("creator removing senior-admin: %v", err)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	d := NewDirectory()
	u, _ := d.Register("Alice", "", role.User)

	snap, _ := d.Get(u.ID)
	snap.Role = role.Creator
	snap.CanWrite = false

	fresh, _ := d.Get(u.ID)
	if fresh.Role != role.User || !fresh.CanWrite {
		t.Fatal("mutating a snapshot leaked into the directory")
	}

	list := d.List()
	list[0].Nickname = "Mallory"
	if fresh, _ = d.Get(u.ID); fresh.Nickname != "Alice" {
		t.Fatal("mutating a list snapshot leaked into the directory")
	}
}

func TestRestoreAdvancesIDAllocator(t *testing.T) {
	d := NewDirectory()
	d.Restore([]User{
		{ID: 7, Nickname: "Old", Role: role.User, CanWrite: true},
		{ID: 3, Nickname: "Older", Role: role.Creator, CanWrite: true},
	})

	u, err := d.Register("New", "", role.User)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID <= 7 {
		t.Fatalf("fresh id %d collides with restored ids", u.ID)
	}
	if d.Count() != 3 {
		t.Fatalf("count = %d, want 3", d.Count())
	}
}
