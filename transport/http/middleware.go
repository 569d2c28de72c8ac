package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/kana-auth/core"
)

const accessTokenKey = "accessToken"

// SessionVerifier checks an access token
type SessionVerifier interface {
	Authenticate(access string) (*core.AccessClaims, error)
}

// RequireSession rejects requests whose access cookie is missing or does not
// verify, before the handler reads the body. The token is stored in the
// context for the handler.
func RequireSession(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookieValue(c, AccessCookie)
		if _, err := verifier.Authenticate(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": core.CodeUnauthorized})
			return
		}

		c.Set(accessTokenKey, token)
		c.Next()
	}
}

// RequestLogger logs one line per request and counts it.
func RequestLogger(logger *slog.Logger, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
