package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBilling_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := NewBilling(reg)
	require.NoError(t, err)

	b.Command("mark_paid", "applied")
	b.Command("mark_paid", "applied")
	b.Command("mark_paid", "redundant")
	b.Changes("generated", 3)
	b.Changes("archived", 0)
	b.FlushFailed()
	b.SetDirty(true)
	b.ObserveReconcile("command", time.Now())

	require.Equal(t, 2.0, testutil.ToFloat64(b.commands.WithLabelValues("mark_paid", "applied")))
	require.Equal(t, 1.0, testutil.ToFloat64(b.commands.WithLabelValues("mark_paid", "redundant")))
	require.Equal(t, 3.0, testutil.ToFloat64(b.changes.WithLabelValues("generated")))
	require.Equal(t, 1.0, testutil.ToFloat64(b.flushFailures))
	require.Equal(t, 1.0, testutil.ToFloat64(b.dirty))
	require.Equal(t, 1, testutil.CollectAndCount(b.reconcileDur))

	b.SetDirty(false)
	require.Equal(t, 0.0, testutil.ToFloat64(b.dirty))

	// second registration on the same registry is rejected
	_, err = NewBilling(reg)
	require.Error(t, err)
}

func TestPrometheus_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{Registry: reg})

	r := gin.New()
	p.Use(r, "")
	r.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, 1.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("200", http.MethodGet, "/items/:id", "")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "req_total"))
}

func TestComputeApproximateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/a", strings.NewReader("abcd"))
	req.Header.Set("X", "y")
	// "/a" + "POST" + "HTTP/1.1" + "X"+"y" + "example.com" + 4
	require.Equal(t, 2+4+8+2+len("example.com")+4, computeApproximateRequestSize(req))
}
