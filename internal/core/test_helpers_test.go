package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adskoe96/adsk-chat/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// memStore is an in-memory store.MessageStore for hub tests. The hub loop
// and test goroutines both touch it, hence the lock.
type memStore struct {
	mu       sync.Mutex
	messages []*store.Message
	nextID   int64
	failing  bool
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (m *memStore) AppendMessage(_ context.Context, authorID int64, authorName, body string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, store.ErrUnavailable
	}
	msg := &store.Message{
		ID:         m.nextID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) RecentMessages(_ context.Context, limit int) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, store.ErrUnavailable
	}
	start := 0
	if len(m.messages) > limit {
		start = len(m.messages) - limit
	}
	out := make([]*store.Message, len(m.messages)-start)
	copy(out, m.messages[start:])
	return out, nil
}

func (m *memStore) setFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func startHub(t *testing.T, cfg HubConfig, st store.MessageStore) *Hub {
	t.Helper()

	hub := NewHub(cfg, st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func join(t *testing.T, hub *Hub, c *Client) {
	t.Helper()

	hub.Connect(context.Background(), c)
	mustEvent(t, c.Events, EventHistory)
}
