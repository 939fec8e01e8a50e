package handlers

import (
	"foodie/middleware"
	"foodie/utils"
	"github.com/gin-gonic/gin"
)

// render wraps c.HTML so every page gets the current user and any pending
// flash notices.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	user, _ := middleware.GetCurrentUser(c)
	data["CurrentUser"] = user
	data["Flashes"] = utils.TakeFlashes(c)
	c.HTML(status, name, data)
}
