package utils

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Level   string
	Message string
}

// Flash queues a notice in the cookie session.
func Flash(c *gin.Context, level, message string) {
	sess := sessions.Default(c)
	sess.AddFlash(fmt.Sprintf("%s|%s", level, message))
	if err := sess.Save(); err != nil {
		logrus.WithError(err).Warn("failed to save flash message")
	}
}

// TakeFlashes drains queued notices for rendering.
func TakeFlashes(c *gin.Context) []Notice {
	sess := sessions.Default(c)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(); err != nil {
		logrus.WithError(err).Warn("failed to clear flash messages")
	}

	notices := make([]Notice, 0, len(raw))
	for _, f := range raw {
		s, ok := f.(string)
		if !ok {
			continue
		}
		level, message := "info", s
		for i := 0; i < len(s); i++ {
			if s[i] == '|' {
				level, message = s[:i], s[i+1:]
				break
			}
		}
		notices = append(notices, Notice{Level: level, Message: message})
	}
	return notices
}
