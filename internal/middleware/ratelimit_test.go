package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/pkg/ratelimit"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Hit(context.Context, string) (int64, error)   { return 0, errors.New("down") }
func (failingStore) Count(context.Context, string) (int64, error) { return 0, errors.New("down") }
func (failingStore) Reset(context.Context, string) error          { return errors.New("down") }

func limitedRouter(store ratelimit.Store, max int) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(store, max, 900, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := limitedRouter(ratelimit.NewMemory(time.Minute), 3)
	for i := 0; i < 3; i++ {
		if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
	}
	w := hit(r, "10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "900" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if w := hit(r, "10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other ip status = %d", w.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := limitedRouter(failingStore{}, 1)
	for i := 0; i < 3; i++ {
		if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 when the store is down", w.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	want := map[string]string{
		"Content-Security-Policy":      contentSecurityPolicy,
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "SAMEORIGIN",
		"Referrer-Policy":              "no-referrer",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
		"X-DNS-Prefetch-Control":       "off",
	}
	for h, v := range want {
		if got := w.Header().Get(h); got != v {
			t.Errorf("%s = %q, want %q", h, got, v)
		}
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
