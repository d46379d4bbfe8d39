package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/adskoe96/adsk-chat/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProvisionIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	// Re-running the schema against a provisioned database must not fail.
	if _, err := s.db.Exec(schema); err != nil {
		t.Fatalf("second provision failed: %v", err)
	}
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg, err := s.AppendMessage(ctx, 0, "anon", "hello")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if msg.ID == 0 {
		t.Error("expected assigned id")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected assigned timestamp")
	}
	if msg.AuthorID != 0 || msg.AuthorName != "anon" || msg.Body != "hello" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestRecentMessagesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bodies := []string{"one", "two", "three", "four", "five"}
	for _, b := range bodies {
		if _, err := s.AppendMessage(ctx, 0, "anon", b); err != nil {
			t.Fatalf("append %q: %v", b, err)
		}
	}

	// All appends land within the same second, so ordering falls back to the
	// assigned ids.
	got, err := s.RecentMessages(ctx, len(bodies))
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(got) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(got))
	}
	for i, msg := range got {
		if msg.Body != bodies[i] {
			t.Errorf("position %d: expected %q, got %q", i, bodies[i], msg.Body)
		}
		if i > 0 && got[i-1].ID >= msg.ID {
			t.Errorf("ids not ascending at position %d", i)
		}
	}

	// A smaller limit keeps the newest rows.
	tail, err := s.RecentMessages(ctx, 2)
	if err != nil {
		t.Fatalf("recent messages with limit: %v", err)
	}
	if len(tail) != 2 || tail[0].Body != "four" || tail[1].Body != "five" {
		t.Errorf("unexpected tail: %+v", tail)
	}
}

func TestRecentMessagesEmptyLog(t *testing.T) {
	s := newTestStore(t)

	got, err := s.RecentMessages(context.Background(), 50)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no messages, got %d", len(got))
	}
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acc, err := s.CreateAccount(ctx, "ada", "hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acc.DisplayName != "ada" || acc.Role != store.RoleUser {
		t.Errorf("unexpected defaults: %+v", acc)
	}

	if _, err := s.CreateAccount(ctx, "ada", "hash"); err == nil {
		t.Error("expected unique username violation")
	}

	byName, err := s.GetAccountByUsername(ctx, "ada")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != acc.ID {
		t.Errorf("expected id %d, got %d", acc.ID, byName.ID)
	}

	if err := s.UpdateProfile(ctx, acc.ID, "Ada L.", "first programmer"); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := s.UpdateAvatar(ctx, acc.ID, "avatars/ada.png"); err != nil {
		t.Fatalf("update avatar: %v", err)
	}

	updated, err := s.GetAccountByID(ctx, acc.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if updated.DisplayName != "Ada L." || updated.Bio != "first programmer" || updated.Avatar != "avatars/ada.png" {
		t.Errorf("unexpected account after update: %+v", updated)
	}
}

func TestAccountNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAccountByID(ctx, 42); !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if err := s.UpdateProfile(ctx, 42, "x", "y"); !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound on update, got %v", err)
	}
}
