// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for the admin API. The
// API has a single principal: whoever holds ADMIN_TOKEN. On success the
// principal is stored under PrincipalKey for the access log and the limiter.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminPrincipal is the identity recorded for authenticated requests.
const AdminPrincipal = "admin"

// PrincipalKey is the gin context key holding the authenticated principal.
const PrincipalKey = "principal"

// BearerAuth rejects requests whose Authorization header does not carry
// token as a bearer credential.
//
// Behavior:
//   - Missing or malformed header: 401 with WWW-Authenticate.
//   - Wrong token: 401 (compared in constant time).
//   - Empty token: every request is rejected.
func BearerAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := bearer(c.GetHeader("Authorization"))
		if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.Header("WWW-Authenticate", `Bearer realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "missing or invalid bearer token",
			})
			return
		}
		c.Set(PrincipalKey, AdminPrincipal)
		c.Next()
	}
}

// bearer extracts the credential of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearer(h string) (string, bool) {
	scheme, cred, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	cred = strings.TrimSpace(cred)
	return cred, cred != ""
}
