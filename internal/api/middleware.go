package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/activity"
)

const (
	headerUserID = "X-User-ID"
	ctxUser      = "user"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				fail(c, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		c.Next()
	}
}

// identify resolves X-User-ID against the users collection and attaches the
// actor to the request context. Requests without the header pass through
// anonymous; an unknown id is rejected.
func identify(log *activity.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(headerUserID))
		if uid == "" {
			c.Next()
			return
		}
		user, ok, err := log.User(c.Request.Context(), uid)
		if err != nil {
			fail(c, http.StatusInternalServerError, "user lookup failed", err)
			return
		}
		if !ok {
			fail(c, http.StatusForbidden, "unknown user", nil)
			return
		}
		c.Set(ctxUser, user)
		c.Request = c.Request.WithContext(activity.WithActor(c.Request.Context(), uid))
		c.Next()
	}
}

func currentUser(c *gin.Context) (internal.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return internal.User{}, false
	}
	u, ok := v.(internal.User)
	return u, ok
}
