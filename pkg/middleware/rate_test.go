package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/feria/pkg/middleware"
)

func TestRateLimitBudget(t *testing.T) {
	h := middleware.RateLimit(3, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	status := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, status("10.0.0.1:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1:1234"))

	// A different client has its own budget.
	assert.Equal(t, http.StatusOK, status("10.0.0.2:1234"))
}

func TestRateLimitTrustsForwardedFor(t *testing.T) {
	h := middleware.RateLimit(1, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	send := func(fwd string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "127.0.0.1:9999" // same proxy for everyone
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7, 10.0.0.1").Code)
	over := send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, over.Code)
	assert.NotEmpty(t, over.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("203.0.113.8").Code)
}
