package ratelim

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestLimitExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter()

	var served int
	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		served++
		w.WriteHeader(http.StatusOK)
	})

	var lastCode int
	for i := 0; i < rl.burst+5; i++ {
		r := httptest.NewRequest("POST", "/api/v1/orders", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		handler(w, r, nil)
		lastCode = w.Code
	}

	assert.Equal(t, rl.burst, served)
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestLimitSharedAcrossPorts(t *testing.T) {
	rl := NewRateLimiter()

	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	// same IP on changing ephemeral ports drains one bucket
	var lastCode int
	for i := 0; i < rl.burst+1; i++ {
		r := httptest.NewRequest("POST", "/api/v1/orders", nil)
		r.RemoteAddr = fmt.Sprintf("203.0.113.10:%d", 40000+i)
		w := httptest.NewRecorder()
		handler(w, r, nil)
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestLimitIsPerIP(t *testing.T) {
	rl := NewRateLimiter()

	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	// exhaust one client
	for i := 0; i < rl.burst+1; i++ {
		r := httptest.NewRequest("POST", "/api/v1/orders", nil)
		r.RemoteAddr = "203.0.113.8:1234"
		handler(httptest.NewRecorder(), r, nil)
	}

	// a different client is unaffected
	r := httptest.NewRequest("POST", "/api/v1/orders", nil)
	r.RemoteAddr = "203.0.113.9:1234"
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
