package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	sessionHeader     = "X-Cart-Session"
	sessionCtxKey     = "cart_session"
	defaultCookieName = "bt-cart"
	sessionCookieAge  = 30 * 24 * 60 * 60
)

// requestLogger logs one line per request, at warn for 4xx and error for 5xx.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Int("body_size", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

// sessionMiddleware resolves the cart session from the X-Cart-Session header
// or the session cookie, issuing a fresh id when neither holds a valid one.
func sessionMiddleware(cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	return func(c *gin.Context) {
		id := validSession(c.GetHeader(sessionHeader))
		if id == "" {
			if v, err := c.Cookie(cookieName); err == nil {
				id = validSession(v)
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, sessionCookieAge, "/", "", c.Request.TLS != nil, true)
		}
		c.Set(sessionCtxKey, id)
		c.Header(sessionHeader, id)
		c.Next()
	}
}

func validSession(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	u, err := uuid.Parse(v)
	if err != nil {
		return ""
	}
	return u.String()
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}
