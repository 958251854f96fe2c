package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/farhan-labs/mobicash/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func limitedRouter(limit gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.POST("/login", limit, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func hitLogin(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":12345"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiter(t *testing.T) {
	rl := middlewares.NewRateLimiter(3, time.Minute)
	r := limitedRouter(rl.Middleware(middlewares.KeyByIP))

	for i := 0; i < 3; i++ {
		if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, body=%s", i+1, w.Code, w.Body.String())
		}
	}

	w := hitLogin(r, "10.0.0.1")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Errorf("expected a Retry-After header")
	}

	// other clients are unaffected
	if w := hitLogin(r, "10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("different ip got %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, 20*time.Millisecond)
	r := limitedRouter(rl.Middleware(middlewares.KeyByIP))

	if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", w.Code)
	}
	if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", w.Code)
	}

	time.Sleep(30 * time.Millisecond)

	if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("after window: status = %d, want 200", w.Code)
	}
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	rl := middlewares.NewRedisRateLimiter(rdb, 2, time.Minute)
	r := limitedRouter(rl.Middleware(middlewares.KeyByIP))

	for i := 0; i < 2; i++ {
		if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, body=%s", i+1, w.Code, w.Body.String())
		}
	}

	w := hitLogin(r, "10.0.0.1")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// window expiry clears the counter
	mr.FastForward(2 * time.Minute)

	if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("after expiry: status = %d, want 200", w.Code)
	}
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	rl := middlewares.NewRedisRateLimiter(rdb, 1, time.Minute)
	r := limitedRouter(rl.Middleware(middlewares.KeyByIP))

	mr.Close()

	// login must keep working when Redis is unreachable
	for i := 0; i < 5; i++ {
		if w := hitLogin(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}
