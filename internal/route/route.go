// Package route turns loaders into permission-gated HTTP handlers.
//
// A loader only runs after the caller has been authorized for every
// capability its route requires. Its result is written as JSON; a nil
// result is the empty success payload {}.
package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/soyeahso/suite/internal/authz"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
)

const maxBodyBytes = 1 << 20

// PermissionChecker is the authorization collaborator consulted before
// any loader runs.
type PermissionChecker interface {
	RequirePermissions(r *http.Request, caps ...domain.Capability) (domain.Caller, error)
}

// Request is what a loader sees: the HTTP request plus the authorized caller.
type Request struct {
	*http.Request
	Caller domain.Caller
	Log    *logging.Logger
}

// Decode reads a JSON body into v.
func (r *Request) Decode(v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return BadRequest(fmt.Sprintf("invalid body: %v", err))
	}
	return nil
}

// Loader supplies the payload of a route once the caller is authorized.
type Loader func(ctx context.Context, req *Request) (any, error)

// Empty is the loader of data-only routes.
func Empty(context.Context, *Request) (any, error) {
	return nil, nil
}

// BadRequestError is returned by loaders for invalid input.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// BadRequest builds a *BadRequestError.
func BadRequest(msg string) error {
	return &BadRequestError{Message: msg}
}

// Gatekeeper builds gated handlers that share a checker, logger and metrics.
type Gatekeeper struct {
	checker PermissionChecker
	log     *logging.Logger
	metrics *metrics.Metrics
	hooks   hooks.Emitter
}

// NewGatekeeper creates a Gatekeeper. m may be nil.
func NewGatekeeper(checker PermissionChecker, log *logging.Logger, m *metrics.Metrics) *Gatekeeper {
	return &Gatekeeper{checker: checker, log: log.Sub("route"), metrics: m, hooks: (*hooks.Manager)(nil)}
}

// WithHooks makes denials emit access_denied. It returns g.
func (g *Gatekeeper) WithHooks(e hooks.Emitter) *Gatekeeper {
	if e != nil {
		g.hooks = e
	}
	return g
}

// Gate returns a handler that checks caps before invoking load.
// name labels the route in logs and metrics.
func (g *Gatekeeper) Gate(name string, load Loader, caps ...domain.Capability) http.Handler {
	return &gated{gk: g, name: name, load: load, caps: caps}
}

type gated struct {
	gk   *Gatekeeper
	name string
	load Loader
	caps []domain.Capability
}

func (h *gated) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.serve(w, r)
	h.gk.metrics.RouteRequest(h.name, strconv.Itoa(status))
}

func (h *gated) serve(w http.ResponseWriter, r *http.Request) (status int) {
	log := h.gk.log.With("route", h.name)

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		mp, ok := rec.(*MissingParamError)
		if !ok {
			panic(rec)
		}
		log.Error().Str("param", mp.Name).Str("path", r.URL.Path).Msg("route invoked without required parameter")
		status = http.StatusInternalServerError
		writeError(w, status, "missing_param", mp.Error())
	}()

	caller, err := h.gk.checker.RequirePermissions(r, h.caps...)
	if err != nil {
		status = statusFor(err)
		h.denied(r, err, status)
		writeError(w, status, codeFor(err), err.Error())
		return status
	}

	req := &Request{
		Request: r.WithContext(authz.WithCaller(r.Context(), caller)),
		Caller:  caller,
		Log:     log.With("user", caller.UserID),
	}

	payload, err := h.load(req.Context(), req)
	if err != nil {
		status = statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("loader failed")
			msg = "internal error"
		}
		writeError(w, status, codeFor(err), msg)
		return status
	}

	if payload == nil {
		payload = struct{}{}
	}
	WriteJSON(w, http.StatusOK, payload)
	return http.StatusOK
}

// denied emits access_denied for 401 and 403. Rate-limited requests are
// counted by metrics only.
func (h *gated) denied(r *http.Request, err error, status int) {
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return
	}
	data := map[string]any{"route": h.name, "status": status, "path": r.URL.Path}
	var denied *authz.DeniedError
	if errors.As(err, &denied) {
		if denied.Capability != (domain.Capability{}) {
			data["capability"] = denied.Capability.String()
		}
		if denied.Caller.UserID != "" {
			data["user"] = denied.Caller.UserID
			data["company"] = denied.Caller.CompanyID
		}
	}
	h.gk.hooks.Emit(r.Context(), hooks.EventAccessDenied, data)
}

func statusFor(err error) int {
	var denied *authz.DeniedError
	var bad *BadRequestError
	switch {
	case errors.As(err, &denied):
		return authz.StatusCode(err)
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	switch statusFor(err) {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: msg})
}

// WriteError writes an ErrorBody; status and code are derived from err.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), codeFor(err), err.Error())
}
