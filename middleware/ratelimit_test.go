package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/send", RateLimit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doSend(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowsWithinCapacity(t *testing.T) {
	SetRateLimitConfig(time.Minute, 3)
	t.Cleanup(func() { SetRateLimitConfig(10*time.Second, 5) })
	r := rateLimitedRouter()

	for i := 0; i < 3; i++ {
		if w := doSend(r); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, w.Code)
		}
	}

	w := doSend(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit request: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response lacks Retry-After")
	}
}

func TestRateLimitRefills(t *testing.T) {
	SetRateLimitConfig(100*time.Millisecond, 1)
	t.Cleanup(func() { SetRateLimitConfig(10*time.Second, 5) })
	r := rateLimitedRouter()

	if w := doSend(r); w.Code != http.StatusOK {
		t.Fatalf("first request: status %d", w.Code)
	}
	if w := doSend(r); w.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted bucket: status %d, want 429", w.Code)
	}

	time.Sleep(150 * time.Millisecond)
	if w := doSend(r); w.Code != http.StatusOK {
		t.Fatalf("after refill window: status %d, want 200", w.Code)
	}
}

func TestRateLimitKeysPerIP(t *testing.T) {
	SetRateLimitConfig(time.Minute, 1)
	t.Cleanup(func() { SetRateLimitConfig(10*time.Second, 5) })
	r := rateLimitedRouter()

	if w := doSend(r); w.Code != http.StatusOK {
		t.Fatalf("first client: status %d", w.Code)
	}

	// a different client still has a full bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("second client: status %d, want 200", w.Code)
	}
}
