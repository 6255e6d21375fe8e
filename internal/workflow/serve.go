package workflow

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
	"github.com/soyeahso/suite/internal/route"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body,
// prefixed with "sha256=".
const SignatureHeader = "X-Suite-Signature"

const maxEventBytes = 1 << 20

// Options configures Serve.
type Options struct {
	// SigningKey enables signature checks on both endpoints. Empty
	// disables them.
	SigningKey string
	Log        *logging.Logger
	Metrics    *metrics.Metrics
	Hooks      hooks.Emitter
}

// Handler is the loader/action pair produced by Serve.
type Handler struct {
	// Loader answers GET with the registered workflows.
	Loader http.Handler
	// Action answers POST by running the workflow named in the body.
	Action http.Handler

	registry *Registry
	opts     Options
	log      *logging.Logger
}

// Serve registers workflows and returns the HTTP pair exposing them.
func Serve(opts Options, workflows ...Workflow) (*Handler, error) {
	reg, err := NewRegistry(workflows...)
	if err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	if opts.Hooks == nil {
		opts.Hooks = (*hooks.Manager)(nil)
	}

	h := &Handler{registry: reg, opts: opts, log: log.Sub("workflow")}
	h.Loader = h.verified(http.HandlerFunc(h.list))
	h.Action = h.verified(http.HandlerFunc(h.invoke))

	h.log.Info().Strs("workflows", reg.IDs()).Bool("signed", opts.SigningKey != "").Msg("workflows registered")
	if opts.SigningKey == "" {
		h.log.Warn().Msg("workflow signing key not set, requests are not verified")
	}
	return h, nil
}

// Registry exposes the registered workflows.
func (h *Handler) Registry() *Registry { return h.registry }

// ServeHTTP dispatches GET to Loader and POST to Action.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.Loader.ServeHTTP(w, r)
	case http.MethodPost:
		h.Action.ServeHTTP(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		route.WriteJSON(w, http.StatusMethodNotAllowed, route.ErrorBody{Error: "method_not_allowed"})
	}
}

// Trigger runs a workflow in-process.
func (h *Handler) Trigger(ctx context.Context, ev Event) (Result, error) {
	wf, ok := h.registry.Get(ev.WorkflowID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownWorkflow, ev.WorkflowID)
	}

	data := map[string]any{"workflow": ev.WorkflowID, "company": ev.CompanyID, "recipients": len(ev.Recipients)}
	h.opts.Hooks.Emit(ctx, hooks.EventWorkflowTriggered, data)

	res, err := wf.Run(ctx, ev)
	if err != nil {
		h.opts.Metrics.WorkflowRun(ev.WorkflowID, "error")
		h.opts.Hooks.Emit(ctx, hooks.EventWorkflowFailed, map[string]any{"workflow": ev.WorkflowID, "company": ev.CompanyID, "error": err.Error()})
		return res, err
	}
	h.opts.Metrics.WorkflowRun(ev.WorkflowID, "ok")
	h.opts.Hooks.Emit(ctx, hooks.EventWorkflowCompleted, map[string]any{
		"workflow":  ev.WorkflowID,
		"company":   ev.CompanyID,
		"run":       res.RunID,
		"delivered": res.Delivered,
	})
	return res, nil
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	route.WriteJSON(w, http.StatusOK, map[string]any{"workflows": h.registry.Info()})
}

func (h *Handler) invoke(w http.ResponseWriter, r *http.Request) {
	var ev Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		route.WriteJSON(w, http.StatusBadRequest, route.ErrorBody{Error: "invalid_request", Message: err.Error()})
		return
	}
	if ev.WorkflowID == "" {
		route.WriteJSON(w, http.StatusBadRequest, route.ErrorBody{Error: "invalid_request", Message: "workflowId is required"})
		return
	}

	res, err := h.Trigger(r.Context(), ev)
	switch {
	case errors.Is(err, ErrUnknownWorkflow):
		route.WriteJSON(w, http.StatusNotFound, route.ErrorBody{Error: "not_found", Message: err.Error()})
	case err != nil:
		h.log.Error().Err(err).Str("workflow", ev.WorkflowID).Msg("workflow run failed")
		route.WriteJSON(w, http.StatusUnprocessableEntity, route.ErrorBody{Error: "workflow_failed", Message: err.Error()})
	default:
		h.log.Debug().Str("workflow", ev.WorkflowID).Str("run", res.RunID).Int("delivered", res.Delivered).Msg("workflow run")
		route.WriteJSON(w, http.StatusOK, res)
	}
}

// verified buffers the body and checks its signature before next runs.
func (h *Handler) verified(next http.Handler) http.Handler {
	if h.opts.SigningKey == "" {
		return next
	}
	key := []byte(h.opts.SigningKey)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
		if err != nil {
			route.WriteJSON(w, http.StatusBadRequest, route.ErrorBody{Error: "invalid_request", Message: "unreadable body"})
			return
		}
		if !Verify(key, body, r.Header.Get(SignatureHeader)) {
			h.log.Info().Str("remote", r.RemoteAddr).Msg("rejected unsigned workflow request")
			route.WriteJSON(w, http.StatusUnauthorized, route.ErrorBody{Error: "unauthorized", Message: "invalid signature"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// Sign returns the signature header value for body.
func Sign(key, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the signature of body under key.
func Verify(key, body []byte, sig string) bool {
	hexSig, ok := strings.CutPrefix(sig, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
