package middlewares

import (
	"net/http"
	"strings"

	"civic-issues-be/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AdminKey is the context key holding the *utils.AdminIdentity of an
	// authenticated request.
	AdminKey = "admin"

	TokenHeader = "x-auth-token"
	TokenCookie = "auth_token"
)

// tokenFrom reads the staff token from the x-auth-token header, a Bearer
// Authorization header or the auth cookie, in that order.
func tokenFrom(c *gin.Context) string {
	if token := c.GetHeader(TokenHeader); token != "" {
		return token
	}
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

func AuthMiddleware(tokens *utils.TokenIssuer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFrom(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}

		identity, err := tokens.Verify(tokenString)
		if err != nil {
			log.Debug("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}

		c.Set(AdminKey, identity)
		c.Next()
	}
}

// CurrentAdmin returns the identity stored by AuthMiddleware.
func CurrentAdmin(c *gin.Context) (*utils.AdminIdentity, bool) {
	v, ok := c.Get(AdminKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*utils.AdminIdentity)
	return identity, ok
}

// RequireAuthUnless passes every request through when open is true and
// applies auth otherwise.
func RequireAuthUnless(open bool, auth gin.HandlerFunc) gin.HandlerFunc {
	if open {
		return func(c *gin.Context) { c.Next() }
	}
	return auth
}
