package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func observedEngine() (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(GinMiddleware(log))
	return r, logs
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs completed requests with status and latency", func(t *testing.T) {
		r, logs := observedEngine()
		r.GET("/api/packages", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/packages?g_code=G0007", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "request completed", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/packages", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "g_code=G0007", fields["query"])
		assert.Contains(t, fields, "latency")
	})

	t.Run("server errors log at error level", func(t *testing.T) {
		r, logs := observedEngine()
		r.GET("/boom", func(c *gin.Context) {
			c.Status(http.StatusBadGateway)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("health checks are not logged", func(t *testing.T) {
		r, logs := observedEngine()
		r.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("handlers see a request-scoped logger", func(t *testing.T) {
		r, _ := observedEngine()

		var scoped *zap.Logger
		r.GET("/scoped", func(c *gin.Context) {
			scoped = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scoped", nil))

		require.NotNil(t, scoped)
		assert.True(t, scoped.Core().Enabled(zap.InfoLevel))
	})
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success": false, "error": "internal error"}`, w.Body.String())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestGetGinLoggerOutsideRequest(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	log := GetGinLogger(c)
	require.NotNil(t, log)
	// nop logger: enabled at no level
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}
