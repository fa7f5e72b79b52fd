package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"absent", "", ""},
		{"plain", "user-1", "user-1"},
		{"trimmed", "  user-2 ", "user-2"},
		{"inner space", "user 3", ""},
		{"too long", strings.Repeat("x", maxUserIDLen+1), ""},
		{"max length", strings.Repeat("y", maxUserIDLen), strings.Repeat("y", maxUserIDLen)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			r := gin.New()
			r.Use(Identity())
			r.GET("/", func(c *gin.Context) {
				got = UserID(c)
				c.Status(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(HeaderUserID, tc.header)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)
			if got != tc.want {
				t.Fatalf("UserID = %q, want %q", got, tc.want)
			}
		})
	}
}
