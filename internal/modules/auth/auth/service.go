package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/modules/auth/user"
	"github.com/tsystem/portal/internal/pkg/audit"
	jwtpkg "github.com/tsystem/portal/internal/pkg/jwt"
	"github.com/tsystem/portal/internal/pkg/ratelimit"
	sessionpkg "github.com/tsystem/portal/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many login attempts, please try again later")
	ErrPersistence        = errors.New("persistence failure")
)

// dummyHash is compared against when the email is unknown so both failure paths
// spend a bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := user.HashPassword("portal-unknown-user")
	return h
})

type Options struct {
	TokenTTL    time.Duration
	MaxAttempts int
}

type Service struct {
	db       *gorm.DB
	users    *user.Service
	attempts ratelimit.Store
	audit    *audit.Recorder
	logger   *zap.Logger
	opts     Options
}

func NewService(db *gorm.DB, attempts ratelimit.Store, recorder *audit.Recorder, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = sessionpkg.DefaultTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Service{
		db:       db,
		users:    user.NewService(db),
		attempts: attempts,
		audit:    recorder,
		logger:   logger.Named("AuthService"),
		opts:     opts,
	}
}

// attemptKey folds case so the lockout matches the case-insensitive email lookup.
func attemptKey(email string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and issues a session. Every call writes exactly one
// login log entry.
func (s *Service) Login(ctx context.Context, email, password string, origin audit.Origin) (*LoginResponse, error) {
	key := attemptKey(email)
	count, err := s.attempts.Count(ctx, key)
	if err != nil {
		return nil, s.failPersistence(ctx, email, nil, origin, "read login attempts", err)
	}
	if count >= int64(s.opts.MaxAttempts) {
		s.fail(ctx, email, nil, ErrRateLimited, origin)
		return nil, ErrRateLimited
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.failPersistence(ctx, email, nil, origin, "find user", err)
	}
	if u == nil {
		user.CheckPassword(dummyHash(), password)
		s.recordFailure(ctx, key)
		s.fail(ctx, email, nil, ErrInvalidCredentials, origin)
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(u.PasswordHash, password) {
		s.recordFailure(ctx, key)
		s.fail(ctx, email, u, ErrInvalidCredentials, origin)
		return nil, ErrInvalidCredentials
	}

	token, _, err := sessionpkg.Issue(ctx, s.db, jwtpkg.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}, s.opts.TokenTTL)
	if err != nil {
		return nil, s.failPersistence(ctx, email, u, origin, "issue token", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:    u.ID,
		Email:     u.Email,
		CompanyID: u.CompanyID,
		Status:    models.LoginSuccess,
		Origin:    origin,
	})
	s.logger.Info("login succeeded", zap.String("user_id", u.ID), zap.String("ip", origin.IP))

	return &LoginResponse{User: newUserView(u), Token: token}, nil
}

// Logout revokes every stored record of token. Revoking nothing succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	n, err := sessionpkg.Revoke(ctx, s.db, token)
	if err != nil {
		return fmt.Errorf("%w: revoke token: %v", ErrPersistence, err)
	}
	s.logger.Debug("logout", zap.Int64("revoked", n))
	return nil
}

// ResetAttempts clears the failure counter of email.
func (s *Service) ResetAttempts(ctx context.Context, email string) error {
	return s.attempts.Reset(ctx, attemptKey(email))
}

func (s *Service) recordFailure(ctx context.Context, key string) {
	if _, err := s.attempts.Hit(ctx, key); err != nil {
		s.logger.Warn("failed to record login attempt", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) fail(ctx context.Context, email string, u *models.User, reason error, origin audit.Origin) {
	e := audit.Entry{
		Email:  email,
		Status: models.LoginFailed,
		Reason: reason.Error(),
		Origin: origin,
	}
	if u != nil {
		e.UserID = u.ID
		e.CompanyID = u.CompanyID
	}
	s.audit.Record(ctx, e)
}

// failPersistence audits a storage failure on the login path and returns it wrapped in
// ErrPersistence. The log reason stays generic; the cause goes to the error.
func (s *Service) failPersistence(ctx context.Context, email string, u *models.User, origin audit.Origin, op string, cause error) error {
	s.fail(ctx, email, u, ErrPersistence, origin)
	s.logger.Error("login failed on storage", zap.String("op", op), zap.Error(cause))
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, cause)
}
