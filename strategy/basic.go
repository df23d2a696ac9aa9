package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/credential"
)

// Basic authenticates requests carrying a Basic authorization header against
// the user directory. Any decoding failure, unknown email, or password
// mismatch collapses to absence; only a directory failure is surfaced.
type Basic struct {
	Anonymous
	dir    gatehouse.UserDirectory
	hasher gatehouse.Hasher
}

// NewBasic wires a Basic strategy to its directory and hash capability.
func NewBasic(dir gatehouse.UserDirectory, hasher gatehouse.Hasher) *Basic {
	return &Basic{dir: dir, hasher: hasher}
}

// Resolve chains header extraction, base64 decoding, credential splitting,
// directory lookup, and password verification, short-circuiting to absence at
// the first miss.
func (b *Basic) Resolve(ctx context.Context, r *http.Request) (*gatehouse.User, error) {
	encoded, ok := credential.ExtractEncoded(AuthorizationHeader(r))
	if !ok {
		return nil, nil
	}
	decoded, ok := credential.Decode(encoded)
	if !ok {
		return nil, nil
	}
	email, pwd, ok := credential.SplitCredentials(decoded)
	if !ok {
		return nil, nil
	}

	user, err := b.dir.Find(ctx, gatehouse.Filter{Email: email})
	if errors.Is(err, gatehouse.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("basic: directory lookup: %w", err)
	}

	// A stored hash that fails to parse is treated like a mismatch: no
	// error detail may leak to the unauthenticated side.
	match, err := b.hasher.Verify(pwd, user.PasswordHash)
	if err != nil || !match {
		return nil, nil
	}

	return user, nil
}
