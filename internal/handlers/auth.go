package handlers

import (
	"time"

	"relais/internal/config"
	"relais/internal/services/auth"
	"relais/internal/services/user"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	userService user.Service
	cfg         config.AuthConfig
	secure      bool
}

func NewAuthHandler(authService auth.Service, userService user.Service, cfg config.AuthConfig, secure bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cfg:         cfg,
		secure:      secure,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Login accepts an email or phone number and returns JWT tokens.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input loginRequest
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	u, tokens, err := h.authService.Login(c.UserContext(), input.Identifier, input.Password, c.IP())
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return response.Success(c, "Login successful", fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          u,
	})
}

// RefreshToken reads the refresh token from the cookie or the body.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&input)
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return response.Error(c, fiber.StatusUnauthorized, "refresh token not provided")
	}

	tokens, err := h.authService.RefreshTokens(c.UserContext(), refreshToken)
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return response.Success(c, "Token refreshed", tokens)
}

// Logout revokes every outstanding token of the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return response.FromError(c, err)
	}

	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   h.secure,
			Path:     "/",
		})
	}
	return response.Success(c, "Successfully logged out", nil)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var input struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Password changed successfully", nil)
}

// Me returns the caller's profile and effective permissions.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.Get(c.UserContext(), claims, claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile retrieved", fiber.Map{
		"user":        u,
		"permissions": claims.Permissions,
	})
}

// RegisterDevice stores the caller's push notification token.
func (h *AuthHandler) RegisterDevice(c *fiber.Ctx) error {
	var input struct {
		Token string `json:"token" validate:"required,max=4096"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.userService.RegisterDevice(c.UserContext(), claims.UserID, input.Token); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Device registered", nil)
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens *auth.Tokens) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		HTTPOnly: true,
		Secure:   h.secure,
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(h.cfg.AccessTTL.Seconds()),
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		Secure:   h.secure,
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(h.cfg.RefreshTTL.Seconds()),
	})
}
