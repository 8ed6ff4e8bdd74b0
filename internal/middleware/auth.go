package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/pkg/jwt"
	"github.com/tsystem/portal/internal/pkg/response"
	sessionpkg "github.com/tsystem/portal/internal/pkg/session"
	"gorm.io/gorm"
)

const (
	ContextKeyClaims = "auth_claims"
	ContextKeyUserID = "user_id"
)

const (
	MsgNoToken        = "token not provided"
	MsgSessionExpired = "invalid or expired token"
	MsgInvalidToken   = "invalid token"
)

var (
	// ErrNoToken means the Authorization header is missing or has no bearer token.
	ErrNoToken = errors.New("token not provided")
	// ErrSessionNotFound means no unexpired AccessToken row matches the token.
	ErrSessionNotFound = errors.New("session expired or revoked")
)

// Auth returns a middleware that requires a valid bearer session.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ValidateToken(c.Request.Context(), db, c.GetHeader("Authorization"))
		switch {
		case err == nil:
		case errors.Is(err, ErrNoToken):
			response.UnauthorizedMsg(c, MsgNoToken)
			return
		case errors.Is(err, ErrSessionNotFound):
			response.UnauthorizedMsg(c, MsgSessionExpired)
			return
		case errors.Is(err, jwt.ErrInvalidToken):
			response.UnauthorizedMsg(c, MsgInvalidToken)
			return
		default:
			response.InternalError(c, err)
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// ValidateToken checks an Authorization header value. The stored AccessToken row is
// consulted first and is authoritative for revocation; the signature and expiry claim
// are verified after it.
func ValidateToken(ctx context.Context, db *gorm.DB, header string) (*jwt.Claims, error) {
	token := BearerToken(header)
	if token == "" {
		return nil, ErrNoToken
	}

	active, err := sessionpkg.IsActive(ctx, db, token)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrSessionNotFound
	}

	return jwt.Parse(token)
}

// RequireRoles permits the request only when the authenticated role is in roles.
// It must run after Auth.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Unauthorized(c)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// CurrentClaims returns the claims stored by Auth, or nil.
func CurrentClaims(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// BearerToken returns the token of a "Bearer <token>" header value, or "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
