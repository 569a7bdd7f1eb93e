package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Gate resolves bearer tokens on incoming requests. State per request:
// unauthenticated -> token presented -> authorized claims in context, or a
// uniform 401. There is no partial trust: a token failing any check leaves
// the request unauthenticated.
type Gate struct {
	tokens *TokenService
}

func NewGate(tokens *TokenService) *Gate { return &Gate{tokens: tokens} }

// BearerToken extracts the opaque bearer credential from a request.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// Middleware attaches verified claims to the request context when a valid
// bearer token is presented. It does not reject; pair with RequireAuth.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := BearerToken(r); ok {
			if claims, err := g.tokens.Verify(token); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests that did not present a valid token. The 401
// body is identical for missing, expired and forged credentials.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
