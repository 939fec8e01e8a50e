package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HomeHandler(c *gin.Context) {
	render(c, http.StatusOK, "home/index.html", nil)
}
