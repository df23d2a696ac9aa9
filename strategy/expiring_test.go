package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/gatehouse-dev/gatehouse"
)

func newExpiringForTest(t *testing.T, dir gatehouse.UserDirectory, duration time.Duration) (*ExpiringSession, *time.Time) {
	t.Helper()

	base := NewSession(dir, "session_id")
	now := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)
	clock := &now
	base.now = func() time.Time { return *clock }

	exp := NewExpiringSession(base, duration)
	exp.now = base.now
	return exp, clock
}

func TestExpiringSessionZeroDurationNeverExpires(t *testing.T) {
	dir := newMockDirectory(gatehouse.User{ID: "u1", Email: "bob@gmail.com"})
	exp, clock := newExpiringForTest(t, dir, 0)

	sessionID, ok := exp.Create("u1")
	if !ok {
		t.Fatal("Create failed")
	}

	*clock = clock.Add(1e9 * time.Second)
	userID, ok := exp.UserIDForSession(sessionID)
	if !ok || userID != "u1" {
		t.Fatalf("expected session to outlive any clock advance, got (%q, %v)", userID, ok)
	}
}

func TestExpiringSessionDurationBoundary(t *testing.T) {
	dir := newMockDirectory(gatehouse.User{ID: "u1", Email: "bob@gmail.com"})
	exp, clock := newExpiringForTest(t, dir, 5*time.Second)

	sessionID, ok := exp.Create("u1")
	if !ok {
		t.Fatal("Create failed")
	}
	created := *clock

	*clock = created.Add(4 * time.Second)
	if userID, ok := exp.UserIDForSession(sessionID); !ok || userID != "u1" {
		t.Fatalf("T+4s: got (%q, %v), want (u1, true)", userID, ok)
	}

	// Expiration instant itself is still honored.
	*clock = created.Add(5 * time.Second)
	if _, ok := exp.UserIDForSession(sessionID); !ok {
		t.Fatal("T+5s: expected session still valid at the expiration instant")
	}

	*clock = created.Add(6 * time.Second)
	if userID, ok := exp.UserIDForSession(sessionID); ok {
		t.Fatalf("T+6s: expected absence, got %q", userID)
	}
}

func TestExpiringSessionUnknownID(t *testing.T) {
	exp, _ := newExpiringForTest(t, newMockDirectory(), 5*time.Second)

	if _, ok := exp.UserIDForSession("no-such-session"); ok {
		t.Fatal("expected absence for unknown session")
	}
	if _, ok := exp.UserIDForSession(""); ok {
		t.Fatal("expected absence for empty session id")
	}
}

func TestExpiringSessionResolve(t *testing.T) {
	ctx := context.Background()
	dir := newMockDirectory(gatehouse.User{ID: "u1", Email: "bob@gmail.com"})
	exp, clock := newExpiringForTest(t, dir, 5*time.Second)

	sessionID, _ := exp.Create("u1")

	user, err := exp.Resolve(ctx, cookieRequest(t, "session_id", sessionID))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("expected u1, got %+v", user)
	}

	*clock = clock.Add(6 * time.Second)
	user, err = exp.Resolve(ctx, cookieRequest(t, "session_id", sessionID))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if user != nil {
		t.Fatal("expected absence for expired session")
	}
}

// Expired sessions are rejected lazily, not removed; the record stays in the
// map until PurgeExpired runs.
func TestExpiringSessionLazyRetentionAndPurge(t *testing.T) {
	dir := newMockDirectory(gatehouse.User{ID: "u1", Email: "bob@gmail.com"})
	exp, clock := newExpiringForTest(t, dir, 5*time.Second)

	stale, _ := exp.Create("u1")
	*clock = clock.Add(10 * time.Second)
	fresh, _ := exp.Create("u1")

	if _, ok := exp.UserIDForSession(stale); ok {
		t.Fatal("stale session should be rejected")
	}
	if _, ok := exp.base.record(stale); !ok {
		t.Fatal("stale session should still be retained before purge")
	}

	if removed := exp.PurgeExpired(); removed != 1 {
		t.Fatalf("PurgeExpired removed %d, want 1", removed)
	}
	if _, ok := exp.base.record(stale); ok {
		t.Fatal("stale session should be gone after purge")
	}
	if _, ok := exp.UserIDForSession(fresh); !ok {
		t.Fatal("fresh session should survive purge")
	}
}

func TestExpiringSessionPurgeNoopWithoutDuration(t *testing.T) {
	exp, clock := newExpiringForTest(t, newMockDirectory(), 0)
	exp.Create("u1")
	*clock = clock.Add(time.Hour)

	if removed := exp.PurgeExpired(); removed != 0 {
		t.Fatalf("PurgeExpired removed %d, want 0", removed)
	}
}
