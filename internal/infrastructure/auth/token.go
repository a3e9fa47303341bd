package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/gobalance/internal/domain"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

const (
	claimUserID   = "user_id"
	claimExpires  = "exp"
	claimIssuedAt = "iat"
)

// Claims is the decoded content of a session token.
type Claims struct {
	UserID  string
	Payload map[string]any
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. A non-positive ttl falls back
// to DefaultTokenTTL.
func NewTokenService(secretKey string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock returns a copy of the service reading time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token for userID carrying payload. Payload keys that
// collide with user_id, exp or iat are overwritten.
func (s *TokenService) Issue(userID string, payload map[string]any) (string, error) {
	issuedAt := s.now()

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims[claimUserID] = userID
	claims[claimIssuedAt] = jwt.NewNumericDate(issuedAt)
	claims[claimExpires] = jwt.NewNumericDate(issuedAt.Add(s.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Decode verifies token and returns its claims. It fails with
// domain.ErrTokenMissing, domain.ErrTokenExpired or domain.ErrTokenInvalid.
func (s *TokenService) Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenMissing
	}

	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (interface{}, error) { return s.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	userID, ok := mapClaims[claimUserID].(string)
	if !ok || userID == "" {
		return nil, domain.ErrTokenInvalid
	}

	payload := make(map[string]any, len(mapClaims))
	for k, v := range mapClaims {
		switch k {
		case claimUserID, claimExpires, claimIssuedAt:
			continue
		}
		payload[k] = v
	}

	return &Claims{UserID: userID, Payload: payload}, nil
}
