package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/fatflowers/ispbill/pkg/config"
)

func TestNewEngine_TracesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newEngine(&cfgpkg.Config{Env: "dev"})
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("traceID")) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "abc", w.Body.String())
}
