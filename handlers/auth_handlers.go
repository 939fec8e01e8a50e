package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodie/jwt"
	"foodie/middleware"
	"foodie/models"
	"foodie/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionDuration = 24 * time.Hour

func ShowLoginHandler(c *gin.Context) {
	if _, ok := middleware.GetCurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	render(c, http.StatusOK, "auth/login.html", nil)
}

func LoginHandler(c *gin.Context, db *gorm.DB) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user models.User
	err := db.First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Flash(c, "danger", "Incorrect username.")
			render(c, http.StatusOK, "auth/login.html", nil)
			return
		}
		logrus.WithError(err).Error("failed to look up user during login")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		render(c, http.StatusOK, "auth/login.html", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		utils.Flash(c, "danger", "Incorrect password.")
		render(c, http.StatusOK, "auth/login.html", nil)
		return
	}

	expTime := time.Now().Add(sessionDuration)
	token, err := jwt.GenerateToken(db, user.ID, expTime)
	if err != nil {
		logrus.WithError(err).Error("failed to issue session token")
		utils.Flash(c, "danger", "Something went wrong. Please try again.")
		render(c, http.StatusOK, "auth/login.html", nil)
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, int(sessionDuration.Seconds()), "/", "", false, true)

	utils.Flash(c, "success", fmt.Sprintf("Welcome back, %s!", user.FullName))
	c.Redirect(http.StatusFound, "/")
}

func LogoutHandler(c *gin.Context, db *gorm.DB) {
	tokenString, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && tokenString != "" {
		if err := jwt.RevokeToken(tokenString, db); err != nil {
			logrus.WithError(err).Warn("failed to revoke session token")
		}
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)

	utils.Flash(c, "info", "You have been logged out.")
	c.Redirect(http.StatusFound, "/")
}
