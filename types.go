package gatehouse

import (
	"context"
	"time"
)

// User is the identity record managed by the credential service. The zero
// value of SessionID and ResetToken means "none".
type User struct {
	ID           string
	Email        string
	PasswordHash string
	SessionID    string
	ResetToken   string
	ResetIssued  time.Time
}

// Filter selects at most one user. Exactly one field should be set; empty
// fields are ignored by implementations.
type Filter struct {
	ID         string
	Email      string
	SessionID  string
	ResetToken string
}

// Fields is a named-field update set for [UserDirectory.Update]. Recognized
// keys are [FieldPasswordHash], [FieldSessionID], [FieldResetToken], and
// [FieldResetIssued]; implementations must reject anything else with
// [ErrInvalidField].
type Fields map[string]string

const (
	// FieldPasswordHash is an exported update key recognized by user directories.
	FieldPasswordHash = "password_hash"
	// FieldSessionID is an exported update key recognized by user directories.
	FieldSessionID = "session_id"
	// FieldResetToken is an exported update key recognized by user directories.
	FieldResetToken = "reset_token"
	// FieldResetIssued is an exported update key recognized by user directories.
	// Values are RFC 3339 timestamps; the empty string clears the field.
	FieldResetIssued = "reset_issued"
)

// UserDirectory is the primary interface callers implement to integrate
// gatehouse with their user database. Find returns [ErrUserNotFound] when the
// filter matches nothing; Update returns [ErrInvalidField] for unrecognized
// field names. Both may return wrapped storage errors, which gatehouse treats
// as collaborator failures, never as authentication misses.
type UserDirectory interface {
	Find(ctx context.Context, f Filter) (*User, error)
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	Update(ctx context.Context, id string, fields Fields) error
}

// Hasher is the opaque password-hash capability. Hash must be salted and
// irreversible; Verify reports whether plain matches the stored hash without
// ever recovering it.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}
