package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitLimiter(t *testing.T) {
	l := NewSubmitLimiter(1, 2)
	require.NotNil(t, l)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/x/appointments", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5000"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5003"))

	now = now.Add(10 * time.Minute)
	send("10.0.0.3:1")
	l.mu.Lock()
	_, stale := l.visitors["10.0.0.2"]
	l.mu.Unlock()
	assert.False(t, stale)
}

func TestSubmitLimiter_Disabled(t *testing.T) {
	assert.Nil(t, NewSubmitLimiter(0, 10))

	var l *SubmitLimiter
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := l.Middleware(next)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
