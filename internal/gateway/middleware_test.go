package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soyeahso/suite/internal/logging"
	"github.com/stretchr/testify/assert"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDMiddleware(t *testing.T) {
	h := requestIDMiddleware(http.HandlerFunc(ok))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		origin      string
		want        string
		credentials string
	}{
		{"deny when unconfigured", nil, "https://evil.example", "", ""},
		{"listed origin", []string{"https://app.example"}, "https://app.example", "https://app.example", "true"},
		{"unlisted origin", []string{"https://app.example"}, "https://evil.example", "", ""},
		{"wildcard without credentials", []string{"*"}, "https://any.example", "https://any.example", ""},
		{"listed beside wildcard", []string{"*", "https://app.example"}, "https://app.example", "https://app.example", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := corsMiddleware(http.HandlerFunc(ok), tt.allowed)
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.credentials, rr.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	h := corsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }), []string{"*"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/x/sales", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, called)
}

func TestRecoverMiddleware(t *testing.T) {
	h := recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), logging.New(nil, "silent"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal","message":"internal error"}`, rr.Body.String())
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var seen int
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r)
		seen = w.(*statusWriter).status
	}), logging.New(nil, "silent"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, http.StatusTeapot, seen)
}
