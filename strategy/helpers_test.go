package strategy

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/password"
)

type mockDirectory struct {
	mu      sync.Mutex
	users   map[string]gatehouse.User // keyed by id
	byEmail map[string]string
	findErr error

	findCalls int
}

func newMockDirectory(users ...gatehouse.User) *mockDirectory {
	dir := &mockDirectory{
		users:   make(map[string]gatehouse.User),
		byEmail: make(map[string]string),
	}
	for _, u := range users {
		dir.users[u.ID] = u
		dir.byEmail[u.Email] = u.ID
	}
	return dir
}

func (m *mockDirectory) Find(ctx context.Context, f gatehouse.Filter) (*gatehouse.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}

	if f.Email != "" {
		if id, ok := m.byEmail[f.Email]; ok {
			u := m.users[id]
			return &u, nil
		}
		return nil, gatehouse.ErrUserNotFound
	}
	if f.ID != "" {
		if u, ok := m.users[f.ID]; ok {
			u := u
			return &u, nil
		}
		return nil, gatehouse.ErrUserNotFound
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
	return nil, gatehouse.ErrUserNotFound
}

func (m *mockDirectory) Create(ctx context.Context, email, passwordHash string) (*gatehouse.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return nil, gatehouse.ErrUserExists
	}

	user := gatehouse.User{
		ID:           fmt.Sprintf("u%d", len(m.users)+1),
		Email:        email,
		PasswordHash: passwordHash,
	}
	m.users[user.ID] = user
	m.byEmail[email] = user.ID
	return &user, nil
}

func (m *mockDirectory) Update(ctx context.Context, id string, fields gatehouse.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return gatehouse.ErrUserNotFound
	}

	for name, value := range fields {
		switch name {
		case gatehouse.FieldPasswordHash:
			user.PasswordHash = value
		case gatehouse.FieldSessionID:
			user.SessionID = value
		case gatehouse.FieldResetToken:
			user.ResetToken = value
		case gatehouse.FieldResetIssued:
			if value == "" {
				user.ResetIssued = time.Time{}
				continue
			}
			issued, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return fmt.Errorf("%w: %s", gatehouse.ErrInvalidField, name)
			}
			user.ResetIssued = issued
		default:
			return fmt.Errorf("%w: %s", gatehouse.ErrInvalidField, name)
		}
	}

	m.users[id] = user
	return nil
}

var errDirectoryDown = errors.New("directory down")

func newTestHasher(t *testing.T) *password.Argon2 {
	t.Helper()

	h, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func basicRequest(t *testing.T, email, pwd string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	payload := base64.StdEncoding.EncodeToString([]byte(email + ":" + pwd))
	r.Header.Set("Authorization", "Basic "+payload)
	return r
}

func cookieRequest(t *testing.T, cookieName, sessionID string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	if sessionID != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
	}
	return r
}
