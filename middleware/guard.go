// Package middleware adapts a strategy.Strategy to net/http. It translates
// HTTP semantics into strategy calls and maps every authentication miss to a
// uniform 401; it makes no authentication decisions of its own.
package middleware

import (
	"context"
	"net/http"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/gatehouse-dev/gatehouse/strategy"
)

type userContextKey struct{}

// UserFromContext returns the user injected by [Guard].
func UserFromContext(ctx context.Context) (*gatehouse.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*gatehouse.User)
	return user, ok
}

// Guard returns middleware enforcing strat on every path not covered by
// excludedPaths. On success the resolved user is injected into the request
// context; a miss is a bare 401, and a collaborator failure a bare 500,
// with no distinguishing detail either way.
func Guard(strat strategy.Strategy, excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strat == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !strat.RequiresAuth(r.URL.Path, excludedPaths) {
				next.ServeHTTP(w, r)
				return
			}

			user, err := strat.Resolve(r.Context(), r)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
