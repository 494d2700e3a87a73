package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/gizmoball/internal/auth"
	"github.com/playmatatu/gizmoball/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOriginAllowed(t *testing.T) {
	dev := OriginAllowed(&config.Config{Environment: "development"})
	prod := OriginAllowed(&config.Config{Environment: "production", FrontendURL: "https://gizmo.example"})

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, dev(req("http://localhost:3000")))
	assert.True(t, dev(req("")))
	assert.False(t, dev(req("https://evil.example")))

	assert.True(t, prod(req("https://gizmo.example")))
	assert.False(t, prod(req("http://localhost:3000")))
}

func TestRequireControlToken(t *testing.T) {
	r := gin.New()
	r.GET("/sessions/:id", RequireControlToken("secret"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	token, err := auth.IssueControlToken("secret", "s1", time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing", "/sessions/s1", "", http.StatusUnauthorized},
		{"header", "/sessions/s1", "Bearer " + token, http.StatusNoContent},
		{"query", "/sessions/s1?token=" + token, "", http.StatusNoContent},
		{"other session", "/sessions/s2", "Bearer " + token, http.StatusForbidden},
		{"garbage", "/sessions/s1", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
