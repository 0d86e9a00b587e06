package eventbus

import (
	"context"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case evt, ok := <-ch:
		return evt, ok
	case <-time.After(time.Second):
		return Event{}, false
	}
}

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx, "", 4)
	h.Publish(Event{Type: TypeActivityLogged, UserID: "u1"})

	evt, ok := recv(t, ch)
	if !ok || evt.Type != TypeActivityLogged {
		t.Fatalf("unexpected event: %+v ok=%v", evt, ok)
	}
	if evt.Timestamp == 0 {
		t.Fatalf("timestamp should be filled")
	}
}

func TestHub_FilterByUser(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx, "u1", 4)
	h.Publish(Event{Type: TypeHobbyLevelUp, UserID: "u2"})
	h.Publish(Event{Type: TypeHobbyCreated, UserID: "u1"})

	evt, ok := recv(t, ch)
	if !ok || evt.Type != TypeHobbyCreated {
		t.Fatalf("expected only u1 event, got %+v", evt)
	}
}

func TestHub_UnsubscribeOnCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx, "", 1)
	cancel()

	if _, ok := recv(t, ch); ok {
		t.Fatalf("channel should be closed after cancel")
	}
	if n := h.Subscribers(); n != 0 {
		t.Fatalf("subscribers=%d, want 0", n)
	}
}

func TestHub_NilSafe(t *testing.T) {
	var h *Hub
	h.Publish(Event{Type: TypeMoment})
}
