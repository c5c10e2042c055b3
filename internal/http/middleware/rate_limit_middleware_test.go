package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandeepkv93/debt-ledger-service/internal/ratelimit"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
)

type mockLimiter struct {
	allow bool
	retry time.Duration
	err   error
}

func (m mockLimiter) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return m.allow, m.retry, m.err
}

type recordingLimiter struct {
	lastKey string
	allow   bool
}

func (r *recordingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, time.Duration, error) {
	r.lastKey = key
	return r.allow, 0, nil
}

func serveLimited(t *testing.T, rl *RateLimiter, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func newLimitedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	return req
}

func TestRateLimiterFailOpenOnBackendError(t *testing.T) {
	rl := NewRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailOpen, "api")
	if rr := serveLimited(t, rl, newLimitedRequest()); rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open to allow request, got %d", rr.Code)
	}
}

func TestRateLimiterFailClosedOnBackendError(t *testing.T) {
	rl := NewRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailClosed, "auth")
	rr := serveLimited(t, rl, newLimitedRequest())
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed to reject request, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After to fall back to the window, got %q", got)
	}
}

func TestRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	rl := NewRateLimiter(mockLimiter{allow: false, retry: 5 * time.Second}, 1, time.Minute, FailClosed, "api")
	rr := serveLimited(t, rl, newLimitedRequest())
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "5" {
		t.Fatalf("expected Retry-After=5, got %q", got)
	}
}

func TestRateLimiterWithMemoryLimiter(t *testing.T) {
	rl := NewRateLimiter(ratelimit.NewMemoryLimiter(), 2, time.Minute, FailClosed, "auth")
	for i := 0; i < 2; i++ {
		if rr := serveLimited(t, rl, newLimitedRequest()); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}
	if rr := serveLimited(t, rl, newLimitedRequest()); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", rr.Code)
	}
	other := newLimitedRequest()
	other.RemoteAddr = "10.0.0.2:2222"
	if rr := serveLimited(t, rl, other); rr.Code != http.StatusOK {
		t.Fatalf("expected separate budget per client, got %d", rr.Code)
	}
}

func TestSubjectOrIPKeyFunc(t *testing.T) {
	jwtMgr := security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456", 15*time.Minute)
	token, _, err := jwtMgr.Issue(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid token", header: "Bearer " + token, want: "api:sub:42"},
		{name: "invalid token", header: "Bearer not-a-token", want: "api:10.0.0.1"},
		{name: "no token", header: "", want: "api:10.0.0.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			limiter := &recordingLimiter{allow: true}
			rl := NewRateLimiter(limiter, 10, time.Minute, FailClosed, "api").WithKeyFunc(SubjectOrIPKeyFunc(jwtMgr))
			req := newLimitedRequest()
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if rr := serveLimited(t, rl, req); rr.Code != http.StatusOK {
				t.Fatalf("expected request to pass, got %d", rr.Code)
			}
			if limiter.lastKey != tc.want {
				t.Fatalf("expected key %q, got %q", tc.want, limiter.lastKey)
			}
		})
	}
}

func TestLocalRateLimit(t *testing.T) {
	h := LocalRateLimit("api", 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, newLimitedRequest())
		if rr.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i+1, want, rr.Code)
		}
	}
}

func TestRetryAfterHeader(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "1",
		200 * time.Millisecond:  "1",
		1500 * time.Millisecond: "2",
		90 * time.Second:        "90",
	}
	for in, want := range cases {
		if got := RetryAfterHeader(in); got != want {
			t.Fatalf("RetryAfterHeader(%s)=%q want %q", in, got, want)
		}
	}
}
