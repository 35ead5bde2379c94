package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientRateLimiterSweep(t *testing.T) {
	l := NewClientRateLimiter(1, 1, time.Minute)
	defer l.Stop()

	start := time.Now()
	l.bucket("192.0.2.1", start)
	l.bucket("192.0.2.2", start.Add(50*time.Second))

	if n := l.sweep(start.Add(30 * time.Second)); n != 2 {
		t.Fatalf("Expected 2 buckets before ttl, got %d", n)
	}
	if n := l.sweep(start.Add(90 * time.Second)); n != 1 {
		t.Fatalf("Expected idle bucket dropped, got %d remaining", n)
	}
	if _, ok := l.buckets["192.0.2.2"]; !ok {
		t.Errorf("Recently used bucket should survive the sweep")
	}
}

func TestClientRateLimiterSeparatesClients(t *testing.T) {
	l := NewClientRateLimiter(0.001, 1, time.Minute)
	defer l.Stop()

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/deliveries", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("192.0.2.1:4000"); code != http.StatusNoContent {
		t.Fatalf("Expected first request through, got %d", code)
	}
	if code := send("192.0.2.1:4001"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected same host on another port to be limited, got %d", code)
	}
	if code := send("198.51.100.7:4000"); code != http.StatusNoContent {
		t.Fatalf("Expected a different client to have its own bucket, got %d", code)
	}
}

func TestClientRateLimiterZeroBurst(t *testing.T) {
	l := NewClientRateLimiter(10, 0, time.Minute)
	defer l.Stop()

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an empty bucket")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deliveries/A1B2C3D4", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}
	if ra := w.Header().Get("Retry-After"); ra != "1" {
		t.Errorf("Expected Retry-After 1, got %q", ra)
	}
}

func TestClientAddr(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:4000":    "192.0.2.1",
		"[2001:db8::1]:443": "2001:db8::1",
		"192.0.2.9":         "192.0.2.9",
	}

	for in, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = in
		if got := clientAddr(req); got != want {
			t.Errorf("clientAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
