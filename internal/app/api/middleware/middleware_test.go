package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatflowers/ispbill/pkg/logctx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(log *zap.SugaredLogger, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), OperatorMiddleware(), RequestLoggerMiddleware(log), AccessLogMiddleware(log))
	r.GET("/ping", h)
	return r
}

func TestMiddlewareChain_PropagatesTraceAndOperator(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var seen context.Context
	r := newTestEngine(zap.New(core).Sugar(), func(c *gin.Context) {
		seen = c.Request.Context()
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "trace-1")
	req.Header.Set(HeaderOperatorID, "op-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "trace-1", w.Header().Get(HeaderRequestID))
	require.Equal(t, "op-1", logctx.OperatorID(seen))

	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "op-1", fields["operator_id"])
	require.Equal(t, "/ping", fields["path"])
	require.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestTraceMiddleware_GeneratesID(t *testing.T) {
	r := newTestEngine(zap.NewNop().Sugar(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Len(t, w.Header().Get(HeaderRequestID), 36)
}
