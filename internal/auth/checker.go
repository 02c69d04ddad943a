package auth

import (
	"context"
	"net/http"
	"strings"
)

const TokenCookieName = "jwt_token"

var _ Checker = (*LoginChecker)(nil)

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

// TokenFromRequest reads the session token from the Authorization bearer header,
// falling back to the jwt_token cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
