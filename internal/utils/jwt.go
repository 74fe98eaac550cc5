package utils

import (
	"errors"
	"strconv"
	"time"

	"relais/internal/config"
	"relais/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "relais-api"

var (
	ErrSecretNotConfigured = errors.New("jwt secret not configured")
	ErrInvalidClaims       = errors.New("invalid token claims")
)

// GenerateTokens signs an access token and a refresh token for claims.
// Refresh tokens carry no permissions; they are reloaded on refresh.
func GenerateTokens(claims *models.UserClaims, cfg config.AuthConfig) (accessToken string, refreshToken string, err error) {
	if cfg.JWTSecret == "" || cfg.RefreshSecret == "" {
		return "", "", ErrSecretNotConfigured
	}

	now := time.Now()

	accessClaims := *claims
	accessClaims.RegisteredClaims = registered(claims.UserID, now, cfg.AccessTTL)
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := models.UserClaims{
		RegisteredClaims: registered(claims.UserID, now, cfg.RefreshTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		TokenVersion:     claims.TokenVersion,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(cfg.RefreshSecret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
	}
}

// ParseToken parses and validates a token signed with secret.
func ParseToken(tokenStr, secret string) (*models.UserClaims, error) {
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
