package httptransport

import (
	"log/slog"

	"github.com/chirphq/chirp/internal/repository"
	"github.com/chirphq/chirp/internal/transport/http/handler"
	"github.com/chirphq/chirp/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, userRepo repository.UserRepository, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	session := middleware.Session(jwtKey, userRepo, logger)

	auth := r.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", session, authHandler.Logout)
	auth.POST("/logout-all", session, authHandler.LogoutAll)
	auth.GET("/me", session, authHandler.Me)
	auth.POST("/send-otp", authHandler.SendOTP)
	auth.POST("/send-otp-pass", authHandler.SendPasswordResetOTP)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/forgot-password", authHandler.ForgotPassword)

	return r
}
