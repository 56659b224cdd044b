package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poiesic/natiq/core"
)

const (
	sessionCookie = "natiq_session"
	sessionKey    = "natiq.session"
)

// loggerMiddleware logs one line per request.
func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			attrs = append(attrs, "err", errs)
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request failed", attrs...)
			return
		}
		logger.Info("request completed", attrs...)
	}
}

// sessionMiddleware assigns every client a session ID cookie.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(sessionCookie)
		if err != nil || uuid.Validate(value) != nil {
			value = string(core.NewSessionID())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, value, 0, "/", "", false, true)
		}
		c.Set(sessionKey, core.SessionID(value))
		c.Next()
	}
}

func sessionID(c *gin.Context) core.SessionID {
	if v, ok := c.Get(sessionKey); ok {
		if sid, ok := v.(core.SessionID); ok {
			return sid
		}
	}
	return ""
}
