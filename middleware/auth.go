package middleware

import (
	"foodie/jwt"
	"foodie/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const SessionCookieName = "session_token"

const userContextKey = "User"

// AuthMiddleware resolves the session cookie into a user record. Requests with
// a missing or invalid cookie continue unauthenticated; the login checks
// downstream decide whether that matters.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}

		userID, err := jwt.VerifyToken(tokenString, db)
		if err != nil {
			logrus.WithError(err).Debug("session token rejected")
			c.Next()
			return
		}

		// The user record is loaded fresh on every request and discarded
		// afterwards; nothing user-related survives between requests.
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			logrus.WithError(err).WithField("userID", userID).Warn("session user no longer exists")
			c.Next()
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// GetCurrentUser returns the authenticated user placed on the context by
// AuthMiddleware, if any.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
