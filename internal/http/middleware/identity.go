// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity. Sessions are owned by the upstream
// gateway, which forwards the authenticated user id in the X-User-ID header.
// A request without the header is anonymous; anonymous callers may read
// feeds but cannot invalidate caches.
package middleware

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID carries the authenticated user id set by the gateway.
	HeaderUserID = "X-User-ID"
	// userIDKey is the Gin context key under which the user id is stored.
	userIDKey = "userID"
	// maxUserIDLen matches the width of the user_id columns.
	maxUserIDLen = 64
)

// Identity stores the caller's user id in the Gin context under "userID".
// Values that are blank, too long or contain control characters are ignored,
// leaving the request anonymous.
//
// Place it before Logger() so access logs carry the user id.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); validUserID(id) {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// UserID returns the caller's user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func validUserID(id string) bool {
	if id == "" || len(id) > maxUserIDLen {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
