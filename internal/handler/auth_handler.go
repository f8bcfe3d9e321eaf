package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"listky/internal/errors"
	"listky/internal/service"
)

// AuthHandler handles account and authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// ClaimRequest represents a username claim request.
type ClaimRequest struct {
	Username string `json:"username" validate:"required"`
	Pin      string `json:"pin" validate:"required"`
}

// LoginRequest represents a PIN login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Pin      string `json:"pin" validate:"required"`
}

// TrendingOptInRequest represents the creator trending toggle request.
type TrendingOptInRequest struct {
	TrendingOptIn *bool `json:"trending_opt_in" validate:"required"`
}

// SessionResponse represents a successful claim or login response.
type SessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Claim godoc
// @Summary Claim a username with a 6-digit PIN
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ClaimRequest true "Username and PIN"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/claim [post]
func (h *AuthHandler) Claim(c echo.Context) error {
	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, token, err := h.authService.Claim(c.Request().Context(), req.Username, req.Pin, c.RealIP())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, SessionResponse{
		Token:    token,
		Username: account.Username,
	})
}

// Login godoc
// @Summary Log in with username and PIN
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Username and PIN"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, token, err := h.authService.Login(c.Request().Context(), req.Username, req.Pin, c.RealIP())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		if httpErr.RetryAfterSeconds > 0 {
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.FormatInt(httpErr.RetryAfterSeconds, 10))
		}
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, SessionResponse{
		Token:    token,
		Username: account.Username,
	})
}

// Logout godoc
// @Summary Revoke the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		httpErr := errors.MapErrorToHTTP(errors.ErrInvalidSession)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me godoc
// @Summary Get the authenticated account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Account
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	username := sessionUsername(c)

	account, err := h.authService.GetAccount(c.Request().Context(), username)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, account)
}

// SetTrendingOptIn godoc
// @Summary Toggle trending inclusion for the authenticated account
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TrendingOptInRequest true "Opt-in flag"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/trending [put]
func (h *AuthHandler) SetTrendingOptIn(c echo.Context) error {
	var req TrendingOptInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	username := sessionUsername(c)
	if err := h.authService.SetTrendingOptIn(c.Request().Context(), username, *req.TrendingOptIn); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"username":        username,
		"trending_opt_in": *req.TrendingOptIn,
	})
}

// sessionUsername returns the username bound by the session middleware.
func sessionUsername(c echo.Context) string {
	username, _ := c.Get("username").(string)
	return username
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
