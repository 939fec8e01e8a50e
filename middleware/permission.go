package middleware

import (
	"net/http"

	"foodie/models"
	"foodie/utils"
	"github.com/gin-gonic/gin"
)

// CheckRolePermissionMiddleware lets the request through only when the
// authenticated user's role is in the allowed set. Denials are soft: a notice
// plus a redirect to the home page, never a hard error.
func CheckRolePermissionMiddleware(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			utils.Flash(c, "warning", "Please log in to access this page.")
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}

		if !allowed[user.Role] {
			utils.Flash(c, "danger", "You do not have permission to access this page.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CheckCountryAccess reports whether user may see data tied to country.
// Admins see everything; everyone else is scoped to their own country.
func CheckCountryAccess(user *models.User, country string) bool {
	if user == nil {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}
	return user.Country == country
}
