package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
)

// sessionMiddleware authenticates embedded-app requests with a Shopify session
// token. Without an Authorization header it falls back to the configured dev shop.
func sessionMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if claims, ok := svc.DevSession(); ok {
				setClaims(c, claims)
				c.Next()
				return
			}
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		token := strings.TrimSpace(parts[1])
		claims, err := svc.ValidateSessionToken(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, fromDomainError(err, "auth_failed"))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
