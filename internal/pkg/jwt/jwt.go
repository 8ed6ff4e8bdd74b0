package jwt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tsystem/portal/internal/models"
)

// ErrInvalidToken wraps every parse or validation failure.
var ErrInvalidToken = errors.New("invalid token")

var (
	mu     sync.RWMutex
	secret []byte
)

// SetSecret configures the signing secret (call on startup).
func SetSecret(s string) {
	if s == "" {
		return
	}
	mu.Lock()
	secret = []byte(s)
	mu.Unlock()
}

func currentSecret() ([]byte, error) {
	mu.RLock()
	defer mu.RUnlock()
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	return secret, nil
}

// Identity is the subject embedded in a session token.
type Identity struct {
	UserID    string
	Email     string
	Role      models.Role
	CompanyID string
}

// Claims is the JWT payload.
type Claims struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CompanyID string      `json:"companyId"`
	jwtlib.RegisteredClaims
}

// Identity returns the subject fields of c.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role, CompanyID: c.CompanyID}
}

// Sign creates an HS256 token for id valid from issuedAt for ttl. Each token carries a
// random jti so two tokens for the same user never collide.
func Sign(id Identity, issuedAt time.Time, ttl time.Duration) (string, error) {
	key, err := currentSecret()
	if err != nil {
		return "", err
	}
	if !id.Role.Valid() {
		return "", fmt.Errorf("sign token: %w", models.ErrInvalidRole)
	}
	claims := Claims{
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		CompanyID: id.CompanyID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwtlib.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// Parse validates signature, expiry and required claims and returns the claims.
func Parse(tokenStr string) (*Claims, error) {
	key, err := currentSecret()
	if err != nil {
		return nil, err
	}
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}
	return claims, nil
}
