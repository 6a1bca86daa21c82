package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultSessionCookie = "better-auth.session_token"
	loginPath            = "/login"
)

var publicPrefixes = []string{"/login", "/register", "/api/auth", "/health"}

// SessionGuard redirects requests without a session cookie to the login
// page. Only the cookie's presence is checked; the auth provider remains
// responsible for validating the session itself.
func SessionGuard(cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusTemporaryRedirect, loginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}
