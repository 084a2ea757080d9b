package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/service"
)

type stubAuth map[string]error

func (s stubAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	err, ok := s[token]
	if !ok {
		return nil, service.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &models.User{ID: uuid.New(), Email: token + "@example.com", IsActive: true}, nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	io.WriteString(w, user.Email)
}

func TestAuthMiddleware(t *testing.T) {
	auth := stubAuth{
		"good":     nil,
		"inactive": fmt.Errorf("%w", service.ErrForbidden),
		"broken":   errors.New("db down"),
	}
	h := AuthMiddleware(auth)(http.HandlerFunc(whoami))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "good@example.com"},
		{"lowercase scheme", "bearer good", http.StatusOK, "good@example.com"},
		{"missing header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "missing bearer token"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "invalid or expired token"},
		{"inactive user", "Bearer inactive", http.StatusForbidden, "user is inactive"},
		{"store failure", "Bearer broken", http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "ok")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, 200, entry.Data["status"])
	assert.Equal(t, "/health", entry.Data["path"])

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "abc-123", hook.LastEntry().Data["request_id"])

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *memoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

func TestRateLimiter(t *testing.T) {
	logger, _ := test.NewNullLogger()
	counter := &memoryCounter{counts: map[string]int64{}}
	rl := NewRateLimiter(counter, 2, time.Minute, "login", nil, logger)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":51234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)
	blocked := hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2").Code)
	assert.Equal(t, int64(3), counter.counts["ratelimit:login:10.0.0.1"])

	counter.err = errors.New("connection refused")
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)
}

func TestNilRateLimiterPassesThrough(t *testing.T) {
	rl := NewRateLimiter(nil, 10, time.Minute, "login", nil, nil)
	assert.Nil(t, rl)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	_, proxies, err := net.ParseCIDR("10.0.0.0/8")
	require.NoError(t, err)
	trusted := []*net.IPNet{proxies}

	tests := []struct {
		name      string
		remote    string
		forwarded string
		trusted   []*net.IPNet
		want      string
	}{
		{"no proxies configured", "198.51.100.4:4000", "203.0.113.7", nil, "198.51.100.4"},
		{"untrusted peer", "198.51.100.4:4000", "203.0.113.7", trusted, "198.51.100.4"},
		{"trusted peer", "10.0.0.1:4000", "203.0.113.7", trusted, "203.0.113.7"},
		{"spoofed leftmost hop", "10.0.0.1:4000", "1.2.3.4, 203.0.113.7", trusted, "203.0.113.7"},
		{"chain of proxies", "10.0.0.1:4000", "203.0.113.7, 10.0.0.9", trusted, "203.0.113.7"},
		{"garbage hop", "10.0.0.1:4000", "203.0.113.7, nonsense", trusted, "10.0.0.1"},
		{"trusted peer without header", "10.0.0.1:4000", "", trusted, "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trusted))
		})
	}
}

func TestRateLimiterIgnoresForgedForwardedFor(t *testing.T) {
	logger, _ := test.NewNullLogger()
	counter := &memoryCounter{counts: map[string]int64{}}
	h := NewRateLimiter(counter, 1, time.Minute, "login", nil, logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for _, forged := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.4:4000"
		req.Header.Set("X-Forwarded-For", forged)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int64(3), counter.counts["ratelimit:login:198.51.100.4"])
}
