package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

// mockClient creates a Client with a queue but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:   hub,
		conn:  nil,
		queue: make(chan []byte, queueDepth),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage("event", "created", 42, 7, nil)
	hub.Broadcast(msg)

	// Check both clients received the message
	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.queue:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "event_created" {
				t.Errorf("expected type event_created, got %s", got.Type)
			}
			if got.ID != 42 {
				t.Errorf("expected id 42, got %d", got.ID)
			}
			if got.CalendarID != 7 {
				t.Errorf("expected calendar_id 7, got %d", got.CalendarID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	msg := NewMessage("occurrence", "cancelled", 1, 1, nil)
	hub.Broadcast(msg)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	// Fill the queue
	for i := 0; i < queueDepth; i++ {
		hub.Broadcast(NewMessage("event", "updated", int64(i), 1, nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(NewMessage("event", "updated", 999, 1, nil))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.queue:
			count++
		default:
			goto done
		}
	}
done:
	if count != queueDepth {
		t.Errorf("expected %d messages, got %d", queueDepth, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("occurrence", "overridden", 5, 2, map[string]any{"original_time": "2025-01-13T09:00:00"})
	if msg.Type != "occurrence_overridden" {
		t.Errorf("expected type occurrence_overridden, got %s", msg.Type)
	}
	if msg.Entity != "occurrence" {
		t.Errorf("expected entity occurrence, got %s", msg.Entity)
	}
	if msg.Action != "overridden" {
		t.Errorf("expected action overridden, got %s", msg.Action)
	}
}
