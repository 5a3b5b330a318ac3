package auth

import (
	"context"
	"net/http"
)

// Context keys
type contextKey string

const userClaimsKey contextKey = "user_claims"

// withUserClaims adds user claims to the context
func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// WithUserClaims is the exported version for testing purposes
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}

// Middleware verifies the Firebase bearer token on each request and stores
// the resulting claims in the request context. Requests without a valid
// token still reach the handler; RequireAuth rejects them per-operation so
// public endpoints stay reachable.
func Middleware(firebaseAuth *FirebaseAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromHeader(authHeader)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := firebaseAuth.VerifyToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware provides a mock user context for local development.
// The X-Debug-Impersonate-User header overrides the default dev identity.
// ONLY use this in development - never in production!
func LocalDevMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims := &UserClaims{
				UID:         "local-dev-user",
				Email:       "dev@localhost",
				DisplayName: "Local Dev User",
				Verified:    true,
			}

			if impersonateUser := r.Header.Get("X-Debug-Impersonate-User"); impersonateUser != "" {
				userClaims = &UserClaims{
					UID:   impersonateUser,
					Email: impersonateUser + "@debug.local",
				}
			}

			next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), userClaims)))
		})
	}
}
