package middleware

import (
	"context"
	"net/http"

	"chargestats/backend/libs/auth"
)

type contextKey string

const subjectKey contextKey = "subject"

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the token subject in the context.
func Auth(validator TokenValidator, onFailure func(w http.ResponseWriter, status int, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				onFailure(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			token, ok := auth.BearerToken(header)
			if !ok {
				onFailure(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				onFailure(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the authenticated token subject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}
