package session

import (
	"context"
	"time"

	"github.com/tsystem/portal/internal/models"
	jwtpkg "github.com/tsystem/portal/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 24 * time.Hour

// Issue signs a token for id and persists the matching AccessToken row. Both share the
// same expiry; the row is the revocation authority.
func Issue(ctx context.Context, db *gorm.DB, id jwtpkg.Identity, ttl time.Duration) (string, *models.AccessToken, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	token, err := jwtpkg.Sign(id, now, ttl)
	if err != nil {
		return "", nil, err
	}

	record := &models.AccessToken{
		Token:     token,
		UserID:    id.UserID,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		return "", nil, err
	}
	return token, record, nil
}

// IsActive reports whether an unexpired AccessToken row exists for token.
func IsActive(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.AccessToken{}).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Revoke deletes every AccessToken row matching token. Deleting nothing is not an error.
func Revoke(ctx context.Context, db *gorm.DB, token string) (int64, error) {
	res := db.WithContext(ctx).Where("token = ?", token).Delete(&models.AccessToken{})
	return res.RowsAffected, res.Error
}

// RevokeUser deletes every AccessToken row of userID.
func RevokeUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	res := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{})
	return res.RowsAffected, res.Error
}

// PurgeExpired deletes rows whose expiry is at or before now.
func PurgeExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.AccessToken{})
	return res.RowsAffected, res.Error
}
