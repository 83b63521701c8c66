package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shoppulse/internal/httpx"
)

const claimsKey = "claims"

func bearer(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authenticate rejects requests without a valid bearer token with 401.
func Authenticate(iss *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			httpx.Abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := iss.Parse(raw)
		if err != nil {
			httpx.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Optional attaches claims when a valid token is present and never rejects.
func Optional(iss *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearer(c); ok {
			if claims, err := iss.Parse(raw); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// Require checks the caller's role against the policy. It must run after
// Authenticate.
func Require(p *Policy, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			httpx.Abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		allowed, err := p.Allowed(string(claims.Role), resource, action)
		if err != nil {
			log.Printf("[auth] policy error user=%s err=%v", claims.UserID, err)
			httpx.Abort(c, http.StatusInternalServerError, "authorization failed")
			return
		}
		if !allowed {
			httpx.Abort(c, http.StatusForbidden, "unauthorized")
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
