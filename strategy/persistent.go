package strategy

import (
	"context"
	"log"
	"net/http"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/session"
)

// PersistentSession wraps an [ExpiringSession] and mirrors every session into
// a durable [session.Store]. The durable copy is the source of truth: lookups
// bypass the in-memory map entirely, so sessions survive process restarts.
type PersistentSession struct {
	exp   *ExpiringSession
	store session.Store
}

// NewPersistentSession wraps exp with the durable store.
func NewPersistentSession(exp *ExpiringSession, store session.Store) *PersistentSession {
	return &PersistentSession{exp: exp, store: store}
}

// RequiresAuth delegates to the wrapped strategy.
func (p *PersistentSession) RequiresAuth(path string, excludedPaths []string) bool {
	return p.exp.RequiresAuth(path, excludedPaths)
}

// Create delegates session creation to the wrapped strategy and then writes
// the durable record. A failed durable write leaves the in-memory session in
// place: the caller keeps a working session and the mirror catches up on the
// next login.
func (p *PersistentSession) Create(ctx context.Context, userID string) (string, bool) {
	sessionID, ok := p.exp.Create(userID)
	if !ok {
		return "", false
	}

	rec, ok := p.exp.base.record(sessionID)
	if !ok {
		return "", false
	}
	if err := p.store.Put(ctx, rec); err != nil {
		log.Print("gatehouse: durable session write failed")
	}

	return sessionID, true
}

// UserIDForSession queries the durable store directly and applies the same
// duration check against the stored creation instant. Store failures map to
// absence.
func (p *PersistentSession) UserIDForSession(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}

	rec, err := p.store.Get(ctx, sessionID)
	if err != nil {
		log.Print("gatehouse: durable session read failed")
		return "", false
	}
	if rec == nil {
		return "", false
	}
	if !p.exp.stillValid(rec.CreatedAt) {
		return "", false
	}
	return rec.UserID, true
}

// Resolve reads the session cookie and loads the user from the durable
// record.
func (p *PersistentSession) Resolve(ctx context.Context, r *http.Request) (*gatehouse.User, error) {
	return p.exp.base.resolveUser(ctx, r, func(sessionID string) (string, bool) {
		return p.UserIDForSession(ctx, sessionID)
	})
}

// Destroy deletes the durable record for the request's session cookie and
// drops the in-memory mirror with it, keeping both tiers consistent. It
// reports false when the cookie is missing or the durable record is unknown.
func (p *PersistentSession) Destroy(ctx context.Context, r *http.Request) bool {
	sessionID, ok := p.exp.SessionCookie(r)
	if !ok {
		return false
	}

	rec, err := p.store.Get(ctx, sessionID)
	if err != nil || rec == nil {
		return false
	}
	if err := p.store.Delete(ctx, sessionID); err != nil {
		return false
	}

	p.exp.base.remove(sessionID)
	return true
}

var _ Strategy = (*PersistentSession)(nil)
var _ Strategy = (*ExpiringSession)(nil)
var _ Strategy = (*Session)(nil)
var _ Strategy = (*Basic)(nil)
var _ Strategy = Anonymous{}
