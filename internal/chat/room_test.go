package chat

import (
	"errors"
	"sync"
	"testing"

	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

func author(id int64, r role.Role) user.User {
	return user.User{ID: id, Nickname: "u", Role: r, CanWrite: true}
}

func TestPostAppendsWithIncreasingIDs(t *testing.T) {
	room := NewRoom()

	first, err := room.Post(author(1, role.User), "hello")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	second, err := room.Post(author(1, role.User), "  world  ")
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	if second.ID <= first.ID {
		t.Fatalf("ids not strictly increasing: %d then %d", first.ID, second.ID)
	}
	if second.Text != "world" {
		t.Fatalf("text = %q, want trimmed %q", second.Text, "world")
	}
	if room.Len() != 2 {
		t.Fatalf("len = %d, want 2", room.Len())
	}
}

func TestPostDisabledRejectsEveryRole(t *testing.T) {
	room := NewRoom()
	if err := room.SetEnabled(role.Creator, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	for _, r := range role.All() {
		_, err := room.Post(author(1, r), "hi")
		if !errors.Is(err, ErrChatDisabled) {
			t.Fatalf("post as %s: error = %v, want ErrChatDisabled", r, err)
		}
	}
	if room.Len() != 0 {
		t.Fatal("disabled room accepted a message")
	}
}

func TestPostWriteDenied(t *testing.T) {
	room := NewRoom()
	muted := author(2, role.User)
	muted.CanWrite = false

	if _, err := room.Post(muted, "hi"); !errors.Is(err, ErrWriteDenied) {
		t.Fatalf("error = %v, want ErrWriteDenied", err)
	}

	// Restoring the privilege re-enables posting with no other change.
	muted.CanWrite = true
	if _, err := room.Post(muted, "hi"); err != nil {
		t.Fatalf("post after unmute: %v", err)
	}
}

func TestPostEmptyMessage(t *testing.T) {
	room := NewRoom()
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := room.Post(author(1, role.User), text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("post %q: error = %v, want ErrEmptyMessage", text, err)
		}
	}
}

func TestSetEnabledCreatorOnly(t *testing.T) {
	room := NewRoom()
	for _, r := range []role.Role{role.User, role.JuniorAdmin, role.Admin, role.SeniorAdmin} {
		if err := room.SetEnabled(r, false); !errors.Is(err, ErrForbidden) {
			t.Fatalf("toggle as %s: error = %v, want ErrForbidden", r, err)
		}
	}
	if !room.Enabled() {
		t.Fatal("forbidden toggle changed the flag")
	}

	if err := room.SetEnabled(role.Creator, false); err != nil {
		t.Fatalf("creator toggle: %v", err)
	}
	if room.Enabled() {
		t.Fatal("flag not cleared")
	}
}

func TestDeleteOne(t *testing.T) {
	room := NewRoom()
	m, _ := room.Post(author(1, role.User), "to delete")
	keep, _ := room.Post(author(1, role.User), "to keep")

	for _, r := range []role.Role{role.User, role.JuniorAdmin, role.Admin, role.SeniorAdmin} {
		if err := room.DeleteOne(r, m.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("delete as %s: error = %v, want ErrForbidden", r, err)
		}
	}

	if err := room.DeleteOne(role.Creator, m.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}

	// Deleting an already-deleted id is NotFound and leaves the log alone.
	if err := room.DeleteOne(role.Creator, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: error = %v, want ErrNotFound", err)
	}
	msgs := room.Messages()
	if len(msgs) != 1 || msgs[0].ID != keep.ID {
		t.Fatalf("log = %v, want only message %d", msgs, keep.ID)
	}
}

func TestClear(t *testing.T) {
	room := NewRoom()
	room.Post(author(1, role.User), "one")
	room.Post(author(1, role.User), "two")

	if err := room.Clear(role.SeniorAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("clear as senior-admin: error = %v, want ErrForbidden", err)
	}
	if room.Len() != 2 {
		t.Fatal("forbidden clear emptied the log")
	}

	if err := room.Clear(role.Creator); err != nil {
		t.Fatalf("creator clear: %v", err)
	}
	if room.Len() != 0 {
		t.Fatalf("len = %d after clear, want 0", room.Len())
	}
}

// A post racing a clear must be fully visible before the clear or fully
// absent after it, never half-applied.
func TestClearAtomicUnderConcurrentPost(t *testing.T) {
	room := NewRoom()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				room.Post(author(1, role.User), "racing")
			}
		}
	}()

	for i := 0; i < 100; i++ {
		if err := room.Clear(role.Creator); err != nil {
			t.Errorf("clear: %v", err)
			break
		}
		msgs := room.Messages()
		// Everything that survived the clear must have been posted
		// after it: ids and order stay consistent.
		for j := 1; j < len(msgs); j++ {
			if msgs[j].ID <= msgs[j-1].ID {
				t.Errorf("order violated after clear: %d then %d", msgs[j-1].ID, msgs[j].ID)
			}
		}
	}

	close(stop)
	wg.Wait()
}

func TestAuthorSnapshotIsFrozen(t *testing.T) {
	room := NewRoom()
	a := author(5, role.User)
	m, _ := room.Post(a, "before promotion")

	// Promoting the author afterwards must not relabel the message.
	a.Role = role.Admin
	got := room.Messages()[0]
	if got.ID != m.ID || got.Author.Role != role.User {
		t.Fatalf("author role = %s, want user (snapshot at send time)", got.Author.Role)
	}
}

func TestRestore(t *testing.T) {
	room := NewRoom()
	room.Restore(false, []Message{
		{ID: 4, Author: author(1, role.User), Text: "old"},
		{ID: 9, Author: author(2, role.Admin), Text: "older"},
	})

	if room.Enabled() {
		t.Fatal("restored enabled flag ignored")
	}
	if err := room.SetEnabled(role.Creator, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	m, err := room.Post(author(1, role.User), "new")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if m.ID <= 9 {
		t.Fatalf("post id %d collides with restored ids", m.ID)
	}
}
