package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/transport/http/middleware"
	"github.com/chirphq/chirp/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, input usecase.SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Logout(ctx context.Context, userID string) error
	SendOTP(ctx context.Context, email string) error
	SendPasswordResetOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	ChangePassword(ctx context.Context, email, newPassword, verificationToken string) error
}

// CookieConfig controls how the session cookie is written. The cookie is
// always HTTP-only and SameSite=None (the frontend lives on another origin).
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge int
}

type AuthHandler struct {
	authUsecase authUsecaser
	cookie      CookieConfig
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookie:      cookie,
		logger:      logger.With("component", "auth_handler"),
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookie, token, h.cookie.MaxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	// net/http renders MaxAge -1 as Max-Age=0, expiring the cookie now.
	c.SetCookie(middleware.SessionCookie, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}

type signupRequest struct {
	FullName          string `json:"fullName" binding:"required,min=3,max=30"`
	Username          string `json:"username" binding:"required,min=3,max=30"`
	Email             string `json:"email" binding:"required,email,min=5,max=100"`
	Password          string `json:"password" binding:"required,min=5,max=20"`
	VerificationToken string `json:"verificationToken" binding:"required"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authUsecase.Signup(c.Request.Context(), usecase.SignupInput{
		FullName:          req.FullName,
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": errNotVerified})
		case errors.Is(err, domain.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": errUsernameTaken})
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": errEmailTaken})
		default:
			h.logger.Error("signup", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, user.Public())
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authUsecase.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": errInvalidUsername})
		case errors.Is(err, domain.ErrPasswordMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errBadPassword})
		default:
			h.logger.Error("login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, user.Public())
}

// POST /api/auth/logout
// Bumps the session epoch (revoking every outstanding token) and clears the
// cookie. A second call fails at the middleware with 401.
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.authUsecase.Logout(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("logout", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.authUsecase.Logout(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("logout all", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out on all devices"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c).Public())
}

type sendOTPRequest struct {
	Email string `json:"email" binding:"required,email,min=5,max=100"`
}

// POST /api/auth/send-otp
// The response never echoes the code; delivery failure is a 500 so the
// client does not poll for a code that was never sent.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.SendOTP(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("send otp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

// POST /api/auth/send-otp-pass
// The reset variant requires an existing account.
func (h *AuthHandler) SendPasswordResetOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.SendPasswordResetOTP(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("send password reset otp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// POST /api/auth/verify-otp
// OTP failures collapse to one 401 message so callers cannot distinguish
// wrong, expired, and absent codes.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authUsecase.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOTPNotFound),
			errors.Is(err, domain.ErrOTPExpired),
			errors.Is(err, domain.ErrOTPMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidOTP})
		default:
			h.logger.Error("verify otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"verificationToken": token})
}

type forgotPasswordRequest struct {
	Email             string `json:"email" binding:"required,email,min=5,max=100"`
	Password          string `json:"password" binding:"required,min=5,max=20"`
	VerificationToken string `json:"verificationToken" binding:"required"`
}

// POST /api/auth/forgot-password
// The verification token is validated and consumed server-side; the frontend
// flow alone is not trusted.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authUsecase.ChangePassword(c.Request.Context(), req.Email, req.Password, req.VerificationToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": errNotVerified})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		default:
			h.logger.Error("forgot password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
