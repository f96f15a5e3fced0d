package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatalf("first two hits should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatalf("third hit inside the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatalf("other clients have their own window")
	}

	now = now.Add(2 * time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatalf("a new window should reset the count")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, expected := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != expected {
			t.Fatalf("request %d: expected %d, got %d", i, expected, rr.Code)
		}
	}
}

func TestRateLimiter_MiddlewareKeysByHost(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for port := 40000; port < 40010; port++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "203.0.113.7:" + strconv.Itoa(port)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected 2 requests allowed across ports, got %d", allowed)
	}
}

func TestClientIP(t *testing.T) {
	cases := map[string]string{
		"203.0.113.7:40000": "203.0.113.7",
		"[::1]:8080":        "::1",
		"203.0.113.7":       "203.0.113.7",
	}
	for in, expected := range cases {
		if got := clientIP(in); got != expected {
			t.Errorf("clientIP(%q) = %q, expected %q", in, got, expected)
		}
	}
}
