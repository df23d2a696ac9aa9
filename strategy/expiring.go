package strategy

import (
	"context"
	"net/http"
	"time"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/session"
)

// ExpiringSession wraps an in-memory [Session] with TTL-based invalidation.
// A duration <= 0 means sessions never expire. Expired sessions are rejected
// lazily on lookup, never purged in the background; callers that care about
// map growth can run [ExpiringSession.PurgeExpired] on their own schedule.
type ExpiringSession struct {
	base     *Session
	duration time.Duration
	now      func() time.Time
}

// NewExpiringSession wraps base with the configured session duration.
func NewExpiringSession(base *Session, duration time.Duration) *ExpiringSession {
	return &ExpiringSession{
		base:     base,
		duration: duration,
		now:      time.Now,
	}
}

// RequiresAuth delegates to the wrapped strategy.
func (e *ExpiringSession) RequiresAuth(path string, excludedPaths []string) bool {
	return e.base.RequiresAuth(path, excludedPaths)
}

// Create delegates to the wrapped strategy; the creation timestamp recorded
// there is what the TTL check runs against.
func (e *ExpiringSession) Create(userID string) (string, bool) {
	return e.base.Create(userID)
}

// UserIDForSession returns the user id for sessionID unless the session is
// unknown or has outlived the configured duration.
func (e *ExpiringSession) UserIDForSession(sessionID string) (string, bool) {
	rec, ok := e.base.record(sessionID)
	if !ok {
		return "", false
	}
	if !e.stillValid(rec.CreatedAt) {
		return "", false
	}
	return rec.UserID, true
}

// Resolve reads the session cookie and loads the user, honoring expiration.
func (e *ExpiringSession) Resolve(ctx context.Context, r *http.Request) (*gatehouse.User, error) {
	return e.base.resolveUser(ctx, r, e.UserIDForSession)
}

// Destroy delegates to the wrapped strategy.
func (e *ExpiringSession) Destroy(r *http.Request) bool {
	return e.base.Destroy(r)
}

// SessionCookie delegates to the wrapped strategy.
func (e *ExpiringSession) SessionCookie(r *http.Request) (string, bool) {
	return e.base.SessionCookie(r)
}

// PurgeExpired removes every expired record from the in-memory map and
// returns the number removed. With duration <= 0 nothing is ever removed.
func (e *ExpiringSession) PurgeExpired() int {
	if e.duration <= 0 {
		return 0
	}
	return e.base.purge(func(rec session.Record) bool {
		return !e.stillValid(rec.CreatedAt)
	})
}

// stillValid reports whether a session created at createdAt is honored now.
// The session survives exactly until createdAt+duration inclusive.
func (e *ExpiringSession) stillValid(createdAt time.Time) bool {
	if e.duration <= 0 {
		return true
	}
	return !createdAt.Add(e.duration).Before(e.now())
}
