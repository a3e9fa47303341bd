package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/domain"
)

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID string, payload map[string]any) (string, error)
}

// LoginObserver records login outcomes.
type LoginObserver interface {
	ObserveLogin(success bool)
}

// AuthHandler exchanges credentials for a token.
type AuthHandler struct {
	users    Authenticator
	tokens   TokenIssuer
	observer LoginObserver
}

// NewAuthHandler creates a new auth handler. observer may be nil.
func NewAuthHandler(users Authenticator, tokens TokenIssuer, observer LoginObserver) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		observer: observer,
	}
}

// Login verifies email and password and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req, http.StatusBadRequest) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.observe(false)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "")
			return
		}
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, map[string]any{"email": user.Email})
	if err != nil {
		h.observe(false)
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to issue token")
		writeError(w, http.StatusInternalServerError, "failed to generate token", "")
		return
	}

	h.observe(true)
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Email: user.Email,
		JWT:   token,
	})
}

func (h *AuthHandler) observe(success bool) {
	if h.observer != nil {
		h.observer.ObserveLogin(success)
	}
}
