package middleware

import (
	"context"
	"net/http"
	"strings"

	"hrunity/internal/domain/auth"
	"hrunity/internal/requestctx"
	"hrunity/internal/transport/http/api"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// Verifier resolves a bearer token into a principal.
type Verifier interface {
	Verify(token string) (auth.Principal, error)
}

// Auth attaches the principal of a valid bearer token to the request.
// Requests without a usable token pass through unauthenticated.
func Auth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := verifier.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no authenticated principal.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, principal auth.Principal) context.Context {
	ctx = context.WithValue(ctx, ctxKeyPrincipal, principal)
	return requestctx.WithActor(ctx, actorLabel(principal))
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	principal, ok := ctx.Value(ctxKeyPrincipal).(auth.Principal)
	return principal, ok
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func actorLabel(p auth.Principal) string {
	if p.EmployeeID == "" {
		return p.Role
	}
	return p.Role + ":" + p.EmployeeID
}
