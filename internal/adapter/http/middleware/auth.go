package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"
)

// TokenDecoder verifies bearer tokens.
type TokenDecoder interface {
	Decode(token string) (*auth.Claims, error)
}

// UserLoader loads the user a token was issued to.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and puts the
// token's user into the request context. A token whose user no longer
// exists is treated as invalid.
func AuthMiddleware(tokens TokenDecoder, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Decode(bearerToken(r))
			if err != nil {
				writeUnauthorized(w, err)
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if errors.Is(err, domain.ErrUserNotFound) {
				writeUnauthorized(w, domain.ErrTokenInvalid)
				return
			}
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load token user")
				writeJSONError(w, http.StatusInternalServerError, "internal server error", "")
				return
			}

			logger := zerolog.Ctx(r.Context()).With().Str("user_id", user.ID).Logger()
			ctx := logger.WithContext(WithUser(r.Context(), user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext extracts the authenticated user from context
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// bearerToken returns the last space separated word of the Authorization
// header, so both "Bearer <token>" and a bare token are accepted.
func bearerToken(r *http.Request) string {
	fields := strings.Fields(r.Header.Get("Authorization"))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	writeJSONError(w, http.StatusUnauthorized, "Not Authorized", tokenErrorMessage(err))
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "Token is missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "Token is expired"
	default:
		return "Token is invalid"
	}
}

func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": message}
	if details != "" {
		body["message"] = details
	}
	json.NewEncoder(w).Encode(body)
}
