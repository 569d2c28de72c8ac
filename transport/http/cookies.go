package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/kana-auth/core"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// CookieConfig controls the attributes of session cookies
type CookieConfig struct {
	Secure bool
	Domain string // empty for host-only cookies
}

func (cc CookieConfig) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", cc.Domain, cc.Secure, true)
}

func (cc CookieConfig) setSession(c *gin.Context, pair core.TokenPair, accessTTL, refreshTTL time.Duration) {
	cc.set(c, AccessCookie, pair.AccessToken, int(accessTTL/time.Second))
	cc.set(c, RefreshCookie, pair.RefreshToken, int(refreshTTL/time.Second))
}

func (cc CookieConfig) clearSession(c *gin.Context) {
	cc.set(c, AccessCookie, "", -1)
	cc.set(c, RefreshCookie, "", -1)
}

func cookieValue(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}
