package middleware

import (
	"net/http"

	"foodie/utils"
	"github.com/gin-gonic/gin"
)

// CheckLoginMiddleware redirects unauthenticated requests to the login page.
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCurrentUser(c); !ok {
			utils.Flash(c, "warning", "Please log in to access this page.")
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}

		c.Next()
	}
}
