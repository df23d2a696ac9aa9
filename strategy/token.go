package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/token"
)

// Token authenticates requests carrying an HS256-signed bearer token. Unlike
// the session strategies it keeps no server-side state: expiry lives in the
// token itself.
type Token struct {
	Anonymous
	dir     gatehouse.UserDirectory
	manager *token.Manager
}

// NewToken wires a bearer-token strategy to its directory and token manager.
func NewToken(dir gatehouse.UserDirectory, manager *token.Manager) *Token {
	return &Token{dir: dir, manager: manager}
}

// Resolve parses the bearer token and loads the embedded user. Signature and
// expiry failures collapse to absence.
func (t *Token) Resolve(ctx context.Context, r *http.Request) (*gatehouse.User, error) {
	raw, ok := strings.CutPrefix(AuthorizationHeader(r), "Bearer ")
	if !ok || raw == "" {
		return nil, nil
	}

	userID, err := t.manager.Parse(raw)
	if err != nil {
		return nil, nil
	}

	user, err := t.dir.Find(ctx, gatehouse.Filter{ID: userID})
	if errors.Is(err, gatehouse.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token: directory lookup: %w", err)
	}
	return user, nil
}

var _ Strategy = (*Token)(nil)
