package gateway

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/route"
)

// withMiddleware wraps a handler with the standard middleware chain.
// Outermost first: logging, CORS, request ID, panic recovery.
func withMiddleware(handler http.Handler, log *logging.Logger, corsOrigins []string) http.Handler {
	h := handler
	h = recoverMiddleware(h, log)
	h = requestIDMiddleware(h)
	h = corsMiddleware(h, corsOrigins)
	h = loggingMiddleware(h, log)
	return h
}

func loggingMiddleware(next http.Handler, log *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Str("requestId", w.Header().Get("X-Request-ID")).
			Msg("http request")
	})
}

// recoverMiddleware turns a panic that escaped a handler into a 500.
func recoverMiddleware(next http.Handler, log *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Str("path", r.URL.Path).
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			route.WriteJSON(w, http.StatusInternalServerError, route.ErrorBody{Error: "internal", Message: "internal error"})
		}()
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if match := matchOrigin(origin, allowedOrigins); match != originDenied {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			// a wildcard never extends to cookie-carrying requests
			if match == originListed {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key, X-Request-ID, X-Suite-Signature")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type originMatch int

const (
	originDenied originMatch = iota
	originWildcard
	originListed
)

// matchOrigin reports how origin is allowed: listed explicitly, through
// "*", or not at all. Listing wins over the wildcard.
func matchOrigin(origin string, allowed []string) originMatch {
	if origin == "" {
		return originDenied
	}
	match := originDenied
	for _, a := range allowed {
		switch a {
		case origin:
			return originListed
		case "*":
			match = originWildcard
		}
	}
	return match
}

// isOriginAllowed denies cross-origin requests unless the origin is listed
// or "*" is configured.
func isOriginAllowed(origin string, allowed []string) bool {
	return matchOrigin(origin, allowed) != originDenied
}

// statusWriter captures the status code. It passes hijacking through so
// notification sockets can upgrade.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
