package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session JWT.
const SessionCookie = "token"

// UserKey is the gin context key the authenticated user is stored under.
const UserKey = "user"

const (
	errUnauthorized   = "Unauthorized"
	errUserNotFound   = "User not found"
	errSessionExpired = "Session expired. Please login again."
	errInternal       = "Internal server error"
)

// Session validates the session cookie and attaches the user to the gin
// context. A token is only accepted while its embedded session epoch matches
// the user's current one, so an epoch bump revokes every outstanding token
// without a blacklist.
func Session(jwtKey []byte, users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, err := c.Cookie(SessionCookie)
		if err != nil || rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
				return
			}
			logger.ErrorContext(c.Request.Context(), "load session user", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}

		// JSON numbers decode as float64; the epoch fits exactly.
		epoch, ok := claims["sv"].(float64)
		if !ok || int64(epoch) != user.SessionEpoch {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errSessionExpired})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Session. It panics if the route
// was not wired behind the middleware.
func CurrentUser(c *gin.Context) *domain.User {
	return c.MustGet(UserKey).(*domain.User)
}
