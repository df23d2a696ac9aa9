package gatehouse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type mockDirectory struct {
	mu      sync.Mutex
	users   map[string]User // keyed by id
	byEmail map[string]string
	findErr error
	updErr  error
}

func newMockDirectory(users ...User) *mockDirectory {
	dir := &mockDirectory{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
	}
	for _, u := range users {
		dir.users[u.ID] = u
		dir.byEmail[u.Email] = u.ID
	}
	return dir
}

func (m *mockDirectory) Find(ctx context.Context, f Filter) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	if f.ID != "" {
		if u, ok := m.users[f.ID]; ok {
			u := u
			return &u, nil
		}
		return nil, ErrUserNotFound
	}
	if f.Email != "" {
		if id, ok := m.byEmail[f.Email]; ok {
			u := m.users[id]
			return &u, nil
		}
		return nil, ErrUserNotFound
	}
	for _, u := range m.users {
		if f.SessionID != "" && u.SessionID == f.SessionID {
			u := u
			return &u, nil
		}
		if f.ResetToken != "" && u.ResetToken == f.ResetToken {
			u := u
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockDirectory) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return nil, ErrUserExists
	}

	user := User{
		ID:           fmt.Sprintf("u%d", len(m.users)+1),
		Email:        email,
		PasswordHash: passwordHash,
	}
	m.users[user.ID] = user
	m.byEmail[email] = user.ID
	return &user, nil
}

func (m *mockDirectory) Update(ctx context.Context, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updErr != nil {
		return m.updErr
	}

	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}

	for name, value := range fields {
		switch name {
		case FieldPasswordHash:
			user.PasswordHash = value
		case FieldSessionID:
			user.SessionID = value
		case FieldResetToken:
			user.ResetToken = value
		case FieldResetIssued:
			if value == "" {
				user.ResetIssued = time.Time{}
				continue
			}
			issued, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidField, name)
			}
			user.ResetIssued = issued
		default:
			return fmt.Errorf("%w: %s", ErrInvalidField, name)
		}
	}

	m.users[id] = user
	return nil
}

func (m *mockDirectory) user(t *testing.T, id string) User {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		t.Fatalf("user %q not in directory", id)
	}
	return u
}

var errDirectoryDown = errors.New("directory down")

// fakeHasher keeps service tests fast; the argon2 hasher has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) {
	return "h:" + plain, nil
}

func (fakeHasher) Verify(plain, encodedHash string) (bool, error) {
	return encodedHash == "h:"+plain, nil
}

func newTestService(t *testing.T, dir UserDirectory) *Service {
	t.Helper()

	svc, err := New().
		WithDirectory(dir).
		WithHasher(fakeHasher{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}
