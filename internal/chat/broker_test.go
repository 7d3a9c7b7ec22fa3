package chat

import (
	"testing"

	"github.com/velsgot/velsgot/internal/user"
)

func TestBrokerPublishFanOut(t *testing.T) {
	b := NewBroker()
	s1 := b.Subscribe("tok-1", "Alice")
	s2 := b.Subscribe("tok-2", "Bob")

	b.Publish(Event{Type: EventChatToggled, Enabled: false})

	for _, sub := range []*Subscriber{s1, s2} {
		select {
		case ev := <-sub.Ch:
			if ev.Type != EventChatToggled || ev.Enabled {
				t.Fatalf("subscriber %s got %+v", sub.Name, ev)
			}
		default:
			t.Fatalf("subscriber %s received nothing", sub.Name)
		}
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	s := b.Subscribe("tok-1", "Alice")
	b.Unsubscribe("tok-1")

	b.Publish(Event{Type: EventNotice, Text: "gone"})

	select {
	case ev := <-s.Ch:
		t.Fatalf("unsubscribed channel received %+v", ev)
	default:
	}
	if b.Count() != 0 {
		t.Fatalf("count = %d, want 0", b.Count())
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	s := b.Subscribe("tok-1", "Slow")

	u := user.User{ID: 1, Nickname: "Slow"}
	for i := 0; i < cap(s.Ch)+10; i++ {
		b.Publish(Event{Type: EventUserMuted, User: &u})
	}

	if got := len(s.Ch); got != cap(s.Ch) {
		t.Fatalf("buffered = %d, want full buffer %d", got, cap(s.Ch))
	}
}

func TestBrokerOnline(t *testing.T) {
	b := NewBroker()
	b.Subscribe("tok-1", "Alice")
	b.Subscribe("tok-2", "Bob")

	names := b.Online()
	if len(names) != 2 {
		t.Fatalf("online = %v, want 2 names", names)
	}
}
