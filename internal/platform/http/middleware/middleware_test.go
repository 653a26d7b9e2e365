package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/logging"
	"internship_backend/internal/platform/metrics"
	"internship_backend/internal/shared/ratelimiter"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serve(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logging.RequestID(c.Request.Context()))
	})

	w := serve(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, http.MethodGet, "/", http.Header{requestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestLogger_WritesAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, config.LogSettings{Level: "info", Format: "text"})

	r := gin.New()
	r.Use(RequestID(), Logger(log))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	serve(r, http.MethodGet, "/items/7", http.Header{requestIDHeader: {"rid-1"}})

	out := buf.String()
	assert.Contains(t, out, "route=/items/:id")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "request_id=rid-1")
	assert.Contains(t, out, "client_ip=192.0.*.*")
}

func TestRecovery_HidesPanic(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("secret detail") })

	w := serve(r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		dl, ok := c.Request.Context().Deadline()
		if !ok || time.Until(dl) > 50*time.Millisecond {
			c.Status(http.StatusInternalServerError)
			return
		}
		<-c.Request.Context().Done()
		if errors.Is(c.Request.Context().Err(), context.DeadlineExceeded) {
			c.Status(http.StatusGatewayTimeout)
		}
	})

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestMetrics_RecordsRoute(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/internships/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", MetricsHandler(reg))

	serve(r, http.MethodGet, "/internships/1", nil)
	serve(r, http.MethodGet, "/internships/2", nil)
	serve(r, http.MethodGet, "/nope", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/internships/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "unmatched", "404")))

	w := serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "internship_http_requests_total")
}

type countingObserver struct{ n int }

func (o *countingObserver) ObserveRateLimited(string) { o.n++ }

func TestRateLimit(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	r := gin.New()
	r.POST("/auth/login", RateLimit("login", ratelimiter.NewMemoryLimiter(2, time.Minute), obs), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login", nil).Code)
	w := serve(r, http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, 1, obs.n)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimiter.Decision, error) {
	return ratelimiter.Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/", RateLimit("x", failingLimiter{}, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(CORS("http://localhost:5173/"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", http.Header{"Origin": {"http://localhost:5173"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	// 許可外のオリジンは拒否
	w = serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/", http.Header{
		"Origin":                        {"http://localhost:5173"},
		"Access-Control-Request-Method": {"POST"},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization"))

	// オリジン未設定なら素通し
	plain := gin.New()
	plain.Use(CORS())
	plain.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = serve(plain, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
