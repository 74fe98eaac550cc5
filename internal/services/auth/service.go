package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relais/internal/config"
	"relais/internal/metrics"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/utils"
	"relais/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service interface {
	Login(ctx context.Context, identifier, password, ip string) (*models.User, *Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	// Authenticate validates an access token against the user's current
	// token version and status.
	Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error)
}

type service struct {
	users repositories.UserRepository
	cfg   config.AuthConfig
	log   *zap.Logger
	now   func() time.Time
}

func NewService(users repositories.UserRepository, cfg config.AuthConfig, log *zap.Logger) Service {
	return &service{
		users: users,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Login accepts an email or a phone number as identifier.
func (s *service) Login(ctx context.Context, identifier, password, ip string) (*models.User, *Tokens, error) {
	user, err := s.getUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			metrics.RecordLogin("unknown_user")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	now := s.now()
	if user.AccountLockoutUntil != nil && now.Before(*user.AccountLockoutUntil) {
		metrics.RecordLogin("locked")
		return nil, nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.recordFailure(ctx, user, now)
		metrics.RecordLogin("bad_password")
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		metrics.RecordLogin("inactive")
		return nil, nil, ErrAccountInactive
	}

	user.FailedLoginAttempts = 0
	user.AccountLockoutUntil = nil
	user.LastLoginAt = &now
	user.LastLoginIP = ip
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("record login: %w", err)
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordLogin("ok")
	s.log.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role), zap.String("ip", ip))
	return user, tokens, nil
}

func (s *service) recordFailure(ctx context.Context, user *models.User, now time.Time) {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= MaxFailedAttempts {
		until := now.Add(LockoutDuration)
		user.AccountLockoutUntil = &until
		user.FailedLoginAttempts = 0
		s.log.Warn("account locked", zap.Uint("user_id", user.ID), zap.Time("until", until))
	}
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("record failed login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := utils.ParseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if user.TokenVersion != claims.TokenVersion || !user.IsActive() {
		return nil, ErrInvalidToken
	}

	return s.issue(user)
}

func (s *service) Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error) {
	claims, err := utils.ParseToken(accessToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	return claims, nil
}

// Logout revokes every token issued so far.
func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.users.IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	user.TokenVersion++ // Invalidate existing tokens

	return s.users.Update(ctx, user)
}

func (s *service) issue(user *models.User) (*Tokens, error) {
	access, refresh, err := utils.GenerateTokens(models.ClaimsFor(user), s.cfg)
	if err != nil {
		s.log.Error("generate tokens", zap.Error(err))
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) getUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if validation.IsEmail(identifier) {
		return s.users.GetByEmail(ctx, identifier)
	}
	return s.users.GetByPhone(ctx, identifier)
}

// HashPassword checks the password policy and hashes it with bcrypt.
func HashPassword(password string) (string, error) {
	v := validation.New()
	v.Password("password", password)
	if !v.Valid() {
		return "", ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
