package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type observed struct {
	method, route string
	status        int
}

type fakeMetrics struct{ calls []observed }

func (f *fakeMetrics) ObserveHTTP(method, route string, status int, _ time.Duration) {
	f.calls = append(f.calls, observed{method: method, route: route, status: status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := &fakeMetrics{}
	router := mux.NewRouter()
	router.Use(Metrics(m))
	router.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/123", nil))

	require.Len(t, m.calls, 1)
	assert.Equal(t, observed{method: http.MethodGet, route: "/bookings/{bookingId}", status: http.StatusNotFound}, m.calls[0])
}

func TestRateLimiter_LimitsPostPerIP(t *testing.T) {
	rl := NewRateLimiter(60, 2, false, logger.NewNop())
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(method, ip string) int {
		r := httptest.NewRequest(method, "/bookings", nil)
		r.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send(http.MethodPost, "10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send(http.MethodPost, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "10.0.0.1"))

	// Другой IP и GET не ограничены
	assert.Equal(t, http.StatusCreated, send(http.MethodPost, "10.0.0.2"))
	assert.Equal(t, http.StatusCreated, send(http.MethodGet, "10.0.0.1"))

	// Через секунду появляется один токен
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, send(http.MethodPost, "10.0.0.1"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(r, false))
	assert.Equal(t, "192.0.2.1", clientIP(r, true))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "192.0.2.1", clientIP(r, false))
	assert.Equal(t, "198.51.100.7", clientIP(r, true))

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", clientIP(r, false))
	assert.Equal(t, "203.0.113.5", clientIP(r, true))
}

func TestRateLimiter_IgnoresForwardedHeadersByDefault(t *testing.T) {
	rl := NewRateLimiter(60, 1, false, logger.NewNop())
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("203.0.113.1"))
	// Смена заголовка не даёт нового лимита
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.3"))
}

func TestRateLimiter_TrustedProxyLimitsPerForwardedClient(t *testing.T) {
	rl := NewRateLimiter(60, 1, true, logger.NewNop())
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusCreated, send("203.0.113.2"))
}
