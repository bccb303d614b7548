package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limited(perMin int) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	rl := NewRateLimiter(perMin)
	rl.now = func() time.Time { return now }
	return rl.Middleware(ok)
}

func hit(h http.Handler, method, target, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitPerIPAndPath(t *testing.T) {
	h := limited(2)

	first := hit(h, http.MethodGet, "/api/predict", "1.1.1.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "/api/predict", "1.1.1.1").Code)

	denied := hit(h, http.MethodGet, "/api/predict", "1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Equal(t, "0", denied.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, denied.Header().Get("Retry-After"))
	assert.Contains(t, denied.Body.String(), "Too Many Requests")

	assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "/api/standings", "1.1.1.1").Code, "other path has its own bucket")
	assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "/api/predict", "2.2.2.2").Code, "other client has its own bucket")
}

func TestRateLimitSkipsCronAndNonAPI(t *testing.T) {
	h := limited(1)
	for range 3 {
		assert.Equal(t, http.StatusOK, hit(h, http.MethodPost, "/api/cron/sync", "1.1.1.1").Code)
		assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "/health", "1.1.1.1").Code)
	}
	assert.Empty(t, hit(h, http.MethodGet, "/health", "1.1.1.1").Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitDisabled(t *testing.T) {
	h := limited(0)
	for range 5 {
		assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "/api/predict", "1.1.1.1").Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	assert.Equal(t, "9.9.9.9", clientIP(req))

	req.Header.Set("CF-Connecting-IP", "8.8.8.8")
	assert.Equal(t, "8.8.8.8", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 7.7.7.7 , 8.8.8.8")
	assert.Equal(t, "7.7.7.7", clientIP(req))
}
