package middleware

import (
	"net/http"
	"strings"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenParser verifies an access token and returns the identity it carries.
type TokenParser interface {
	Parse(token string) (authz.Identity, error)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	sameSite, secure := cookiePolicy()
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, int(accessTTL/time.Second), "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, int(refreshTTL/time.Second), "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite, secure := cookiePolicy()
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// Release builds serve the dashboard cross-origin, so cookies must be SameSite=None and Secure there.
func cookiePolicy() (http.SameSite, bool) {
	if gin.Mode() == gin.ReleaseMode {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// RequireAuth validates the access token from the cookie or the Bearer header
// and stores the caller's identity on the context.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				abortUnauthenticated(c, "Authorization is missing")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abortUnauthenticated(c, "Invalid authorization format. Expected 'Bearer <token>'")
				return
			}
			tokenString = parts[1]
		}

		id, err := parser.Parse(tokenString)
		if err != nil {
			abortUnauthenticated(c, err.Error())
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		response.ErrorKind(http.StatusUnauthorized, apperror.KindUnauthenticated.String(), msg))
}

// CurrentIdentity returns the identity stored by RequireAuth.
func CurrentIdentity(c *gin.Context) (authz.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return authz.Identity{}, false
	}
	id, ok := v.(authz.Identity)
	return id, ok
}
