package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/session"
	"github.com/google/uuid"
)

// Session authenticates requests by a session cookie backed by an in-memory
// map it exclusively owns for the process lifetime. Session ids are v4 UUIDs
// from crypto-grade randomness, never sequential.
type Session struct {
	Anonymous
	dir        gatehouse.UserDirectory
	cookieName string

	mu   sync.RWMutex
	byID map[string]session.Record

	now func() time.Time
}

// NewSession returns an empty in-memory session strategy reading the named
// cookie.
func NewSession(dir gatehouse.UserDirectory, cookieName string) *Session {
	if cookieName == "" {
		cookieName = gatehouse.DefaultCookieName
	}
	return &Session{
		dir:        dir,
		cookieName: cookieName,
		byID:       make(map[string]session.Record),
		now:        time.Now,
	}
}

// CookieName returns the cookie this strategy reads session ids from.
func (s *Session) CookieName() string {
	return s.cookieName
}

// Create stores a new session for userID and returns its id. An empty userID
// reports absence.
func (s *Session) Create(userID string) (string, bool) {
	if userID == "" {
		return "", false
	}

	sessionID := uuid.NewString()
	rec := session.Record{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.byID[sessionID] = rec
	s.mu.Unlock()

	return sessionID, true
}

// UserIDForSession returns the user id mapped to sessionID.
func (s *Session) UserIDForSession(sessionID string) (string, bool) {
	rec, ok := s.record(sessionID)
	if !ok {
		return "", false
	}
	return rec.UserID, true
}

// Resolve reads the session cookie, maps it to a user id, and loads the user.
func (s *Session) Resolve(ctx context.Context, r *http.Request) (*gatehouse.User, error) {
	return s.resolveUser(ctx, r, s.UserIDForSession)
}

// Destroy removes the session carried by the request cookie. It reports false
// when the request has no cookie or the session is unknown.
func (s *Session) Destroy(r *http.Request) bool {
	sessionID, ok := s.SessionCookie(r)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[sessionID]; !exists {
		return false
	}
	delete(s.byID, sessionID)
	return true
}

// SessionCookie extracts the session id cookie from r.
func (s *Session) SessionCookie(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *Session) record(sessionID string) (session.Record, bool) {
	if sessionID == "" {
		return session.Record{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[sessionID]
	return rec, ok
}

func (s *Session) remove(sessionID string) {
	s.mu.Lock()
	delete(s.byID, sessionID)
	s.mu.Unlock()
}

// purge deletes every record for which expired reports true and returns the
// number removed.
func (s *Session) purge(expired func(session.Record) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.byID {
		if expired(rec) {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// resolveUser is the shared cookie-to-user path used by every session layer:
// lookup maps a session id to a user id, then the directory loads the user.
func (s *Session) resolveUser(
	ctx context.Context,
	r *http.Request,
	lookup func(string) (string, bool),
) (*gatehouse.User, error) {
	sessionID, ok := s.SessionCookie(r)
	if !ok {
		return nil, nil
	}

	userID, ok := lookup(sessionID)
	if !ok {
		return nil, nil
	}

	user, err := s.dir.Find(ctx, gatehouse.Filter{ID: userID})
	if errors.Is(err, gatehouse.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: directory lookup: %w", err)
	}
	return user, nil
}
