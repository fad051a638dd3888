package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newLimitedEngine(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/login", limiter.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func postLogin(engine *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	t.Setenv("ENV", "development")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine := newLimitedEngine(NewRateLimiter(client, 3, time.Minute))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, postLogin(engine), "attempt %d should pass", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, postLogin(engine))
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	t.Setenv("ENV", "development")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine := newLimitedEngine(NewRateLimiter(client, 1, time.Minute))

	assert.Equal(t, http.StatusOK, postLogin(engine))
	assert.Equal(t, http.StatusTooManyRequests, postLogin(engine))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, postLogin(engine))
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	t.Setenv("ENV", "development")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine := newLimitedEngine(NewRateLimiter(client, 1, time.Minute))

	mr.Close()
	assert.Equal(t, http.StatusOK, postLogin(engine))
	assert.Equal(t, http.StatusOK, postLogin(engine))
}

func TestRateLimiter_SkippedInTestEnvironment(t *testing.T) {
	t.Setenv("ENV", "test")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine := newLimitedEngine(NewRateLimiter(client, 1, time.Minute))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, postLogin(engine))
	}
}
