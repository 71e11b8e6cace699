package api

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/sarsim/internal/command"
)

// tokenAuth checks the bearer token on mutating endpoints against a bcrypt hash.
// An empty hash disables the check.
type tokenAuth struct {
	hash []byte
}

func newTokenAuth(hash string) *tokenAuth {
	return &tokenAuth{hash: []byte(hash)}
}

func (a *tokenAuth) enabled() bool {
	return len(a.hash) > 0
}

func (a *tokenAuth) require(next http.Handler) http.Handler {
	if !a.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(token)) != nil {
			slog.Warn("api request rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Bearer realm="sarsim"`)
			writeJSON(w, http.StatusUnauthorized, command.Result{
				Status:  command.StatusError,
				Message: "missing or invalid bearer token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HashToken returns the bcrypt hash to put in api.token_hash for token.
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
