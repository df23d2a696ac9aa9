package gatehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatehouse-dev/gatehouse/internal/keyed"
	"github.com/google/uuid"
)

// Service is the credential service: registration, login validation, session
// issuance and teardown, and one-time password-reset tokens, backed by a
// [UserDirectory]. Construct it through [Builder.Build]; a Service is
// immutable afterwards and safe for concurrent use.
//
// Sessions issued here live on the user record itself: a user has at most one
// active session id, and issuing a new one overwrites the old. Concurrent
// logins for the same user therefore race last-writer-wins; that is
// documented behavior, not a defect. Each mutating operation is still a
// critical section per identity, so interleaved multi-step mutations cannot
// lose updates.
type Service struct {
	config  Config
	dir     UserDirectory
	hasher  Hasher
	metrics *Metrics
	audit   *auditDispatcher
	locks   *keyed.MutexSet
	now     func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

// MetricsSnapshot copies the service counters.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded by a full buffer.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// Register creates a new user with a salted, irreversible password hash. It
// fails with [ErrUserExists] when the email is already taken; the existing
// user is left untouched.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if s == nil || s.dir == nil || s.hasher == nil {
		return nil, ErrServiceNotReady
	}
	if email == "" || password == "" {
		return nil, errors.New("register: email and password required")
	}

	unlock := s.locks.Lock("email:" + email)
	defer unlock()

	_, err := s.dir.Find(ctx, Filter{Email: email})
	if err == nil {
		s.metrics.Inc(MetricRegisterDuplicate)
		s.emitAudit(ctx, AuditRegister, "", email, false, ErrUserExists)
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("register: directory lookup: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hashing password: %w", err)
	}

	user, err := s.dir.Create(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("register: creating user: %w", err)
	}

	s.metrics.Inc(MetricRegisterSuccess)
	s.emitAudit(ctx, AuditRegister, user.ID, email, true, nil)
	return user, nil
}

// ValidateLogin reports whether email and password identify a user. Unknown
// email, directory failure, and password mismatch are all the same false: no
// detail leaks to whoever is guessing credentials.
func (s *Service) ValidateLogin(ctx context.Context, email, password string) bool {
	if s == nil || s.dir == nil || s.hasher == nil {
		return false
	}

	user, err := s.dir.Find(ctx, Filter{Email: email})
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		s.emitAudit(ctx, AuditLogin, "", email, false, nil)
		return false
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.Inc(MetricLoginFailure)
		s.emitAudit(ctx, AuditLogin, user.ID, email, false, nil)
		return false
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.emitAudit(ctx, AuditLogin, user.ID, email, true, nil)
	return true
}

// CreateSession issues a fresh session id for the user with this email and
// stores it on the user record, overwriting any prior session. An unknown
// email reports absence, not an error.
func (s *Service) CreateSession(ctx context.Context, email string) (string, error) {
	if s == nil || s.dir == nil {
		return "", ErrServiceNotReady
	}

	user, err := s.dir.Find(ctx, Filter{Email: email})
	if errors.Is(err, ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("create session: directory lookup: %w", err)
	}

	unlock := s.locks.Lock("user:" + user.ID)
	defer unlock()

	sessionID := uuid.NewString()
	if err := s.dir.Update(ctx, user.ID, Fields{FieldSessionID: sessionID}); err != nil {
		return "", fmt.Errorf("create session: updating user: %w", err)
	}

	s.metrics.Inc(MetricSessionCreated)
	s.emitAudit(ctx, AuditSessionCreate, user.ID, email, true, nil)
	return sessionID, nil
}

// UserBySession resolves a service session id to its user, absence for an
// empty or unknown id.
func (s *Service) UserBySession(ctx context.Context, sessionID string) (*User, error) {
	if s == nil || s.dir == nil {
		return nil, ErrServiceNotReady
	}
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.dir.Find(ctx, Filter{SessionID: sessionID})
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user by session: directory lookup: %w", err)
	}
	return user, nil
}

// DestroySession clears the user's current session id. It is idempotent: a
// user without a session, or no such user at all, is still success.
func (s *Service) DestroySession(ctx context.Context, userID string) error {
	if s == nil || s.dir == nil {
		return ErrServiceNotReady
	}
	if userID == "" {
		return nil
	}

	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	err := s.dir.Update(ctx, userID, Fields{FieldSessionID: ""})
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("destroy session: updating user: %w", err)
	}

	s.metrics.Inc(MetricSessionDestroyed)
	s.emitAudit(ctx, AuditSessionDestroy, userID, "", true, nil)
	return nil
}

// IssueResetToken generates a one-time password-reset token for the user
// with this email and stores it on the record, replacing any earlier token.
// It fails with [ErrUserNotFound] for an unknown email.
func (s *Service) IssueResetToken(ctx context.Context, email string) (string, error) {
	if s == nil || s.dir == nil {
		return "", ErrServiceNotReady
	}

	user, err := s.dir.Find(ctx, Filter{Email: email})
	if errors.Is(err, ErrUserNotFound) {
		s.emitAudit(ctx, AuditResetRequest, "", email, false, err)
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return "", fmt.Errorf("issue reset token: directory lookup: %w", err)
	}

	unlock := s.locks.Lock("user:" + user.ID)
	defer unlock()

	resetToken := uuid.NewString()
	fields := Fields{
		FieldResetToken:  resetToken,
		FieldResetIssued: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.dir.Update(ctx, user.ID, fields); err != nil {
		return "", fmt.Errorf("issue reset token: updating user: %w", err)
	}

	s.metrics.Inc(MetricResetRequested)
	s.emitAudit(ctx, AuditResetRequest, user.ID, email, true, nil)
	return resetToken, nil
}

// ResetPassword consumes resetToken: it re-hashes the password and clears
// the token, so a token applies at most once. Unknown tokens fail with
// [ErrUserNotFound] and change nothing. When a reset TTL is configured, an
// aged-out token fails with [ErrResetTokenExpired] and is cleared, forcing a
// fresh request.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if s == nil || s.dir == nil || s.hasher == nil {
		return ErrServiceNotReady
	}
	if resetToken == "" {
		return fmt.Errorf("%w: empty reset token", ErrUserNotFound)
	}

	user, err := s.dir.Find(ctx, Filter{ResetToken: resetToken})
	if errors.Is(err, ErrUserNotFound) {
		s.metrics.Inc(MetricResetFailure)
		s.emitAudit(ctx, AuditResetConfirm, "", "", false, err)
		return fmt.Errorf("%w: unknown reset token", ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("reset password: directory lookup: %w", err)
	}

	unlock := s.locks.Lock("user:" + user.ID)
	defer unlock()

	// Re-read under the lock: the token may have been consumed or replaced
	// between lookup and lock acquisition.
	user, err = s.dir.Find(ctx, Filter{ID: user.ID})
	if err != nil {
		return fmt.Errorf("reset password: directory lookup: %w", err)
	}
	if user.ResetToken != resetToken {
		s.metrics.Inc(MetricResetFailure)
		s.emitAudit(ctx, AuditResetConfirm, user.ID, user.Email, false, ErrUserNotFound)
		return fmt.Errorf("%w: unknown reset token", ErrUserNotFound)
	}

	if ttl := s.config.Reset.TokenTTL; ttl > 0 && !user.ResetIssued.IsZero() {
		if user.ResetIssued.Add(ttl).Before(s.now()) {
			clear := Fields{FieldResetToken: "", FieldResetIssued: ""}
			if err := s.dir.Update(ctx, user.ID, clear); err != nil {
				return fmt.Errorf("reset password: clearing expired token: %w", err)
			}
			s.metrics.Inc(MetricResetFailure)
			s.emitAudit(ctx, AuditResetConfirm, user.ID, user.Email, false, ErrResetTokenExpired)
			return ErrResetTokenExpired
		}
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: hashing password: %w", err)
	}

	fields := Fields{
		FieldPasswordHash: hash,
		FieldResetToken:   "",
		FieldResetIssued:  "",
	}
	if err := s.dir.Update(ctx, user.ID, fields); err != nil {
		return fmt.Errorf("reset password: updating user: %w", err)
	}

	s.metrics.Inc(MetricResetCompleted)
	s.emitAudit(ctx, AuditResetConfirm, user.ID, user.Email, true, nil)
	return nil
}

func (s *Service) emitAudit(ctx context.Context, eventType, userID, email string, success bool, cause error) {
	if s.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: s.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	s.audit.Emit(ctx, event)
}
