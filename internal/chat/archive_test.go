package chat

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/velsgot/velsgot/internal/db"
	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewArchive(database.DB)
}

func archivedMessage(id int64, text string) Message {
	return Message{
		ID:        id,
		Author:    user.User{ID: 1, Nickname: "Alice", Role: role.User, CanWrite: true},
		Text:      text,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	a := openTestArchive(t)

	for i, text := range []string{"one", "two", "three"} {
		if err := a.Append(archivedMessage(int64(i+1), text)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := a.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("loaded %d messages, want 3", len(msgs))
	}
	if msgs[0].Text != "one" || msgs[2].Text != "three" {
		t.Fatalf("order wrong: %q ... %q", msgs[0].Text, msgs[2].Text)
	}
	if msgs[0].Author.Role != role.User || msgs[0].Author.Nickname != "Alice" {
		t.Fatalf("author snapshot lost: %+v", msgs[0].Author)
	}
}

func TestArchiveDeleteAndClear(t *testing.T) {
	a := openTestArchive(t)
	a.Append(archivedMessage(1, "keep"))
	a.Append(archivedMessage(2, "drop"))

	if err := a.Delete(2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	msgs, _ := a.Load()
	if len(msgs) != 1 || msgs[0].ID != 1 {
		t.Fatalf("after delete: %v", msgs)
	}

	if err := a.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if msgs, _ = a.Load(); len(msgs) != 0 {
		t.Fatalf("after clear: %v", msgs)
	}
}

func TestArchiveTail(t *testing.T) {
	a := openTestArchive(t)
	for i := int64(1); i <= 10; i++ {
		a.Append(archivedMessage(i, "msg"))
	}

	msgs, err := a.Tail(3)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("tail returned %d, want 3", len(msgs))
	}
	if msgs[0].ID != 8 || msgs[2].ID != 10 {
		t.Fatalf("tail ids = %d..%d, want 8..10 oldest first", msgs[0].ID, msgs[2].ID)
	}
}
