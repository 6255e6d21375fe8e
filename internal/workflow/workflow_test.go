package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	sent []domain.Notification
	err  error
}

func (c *collector) Notify(_ context.Context, n domain.Notification) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func TestDefinition_Run(t *testing.T) {
	c := &collector{}
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d := &Definition{
		Name:   "ping",
		Render: func(json.RawMessage) (Message, error) { return Message{Title: "hi", Body: "there"}, nil },
		Notify: c,
		now:    func() time.Time { return fixed },
	}

	res, err := d.Run(context.Background(), Event{CompanyID: "acme", Recipients: []string{"u1", "u2"}, Data: json.RawMessage(`{"k":"v"}`)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Delivered)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, c.sent, 2)
	assert.Equal(t, "u2", c.sent[1].UserID)
	assert.Equal(t, "acme", c.sent[0].CompanyID)
	assert.Equal(t, "v", c.sent[0].Data["k"])
	assert.Equal(t, fixed, c.sent[0].CreatedAt)
	assert.NotEqual(t, c.sent[0].ID, c.sent[1].ID)
}

func TestDefinition_RunErrors(t *testing.T) {
	d := &Definition{Name: "ping", Render: renderJobCompleted, Notify: &collector{err: errors.New("offline")}}

	_, err := d.Run(context.Background(), Event{Data: json.RawMessage(`{"jobId":"J1"}`)})
	assert.ErrorContains(t, err, "no recipients")

	_, err = d.Run(context.Background(), Event{Recipients: []string{"u"}, Data: json.RawMessage(`{}`)})
	assert.ErrorContains(t, err, "missing jobId")

	res, err := d.Run(context.Background(), Event{Recipients: []string{"u"}, Data: json.RawMessage(`{"jobId":"J1"}`)})
	assert.ErrorContains(t, err, "offline")
	assert.Zero(t, res.Delivered)
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(Builtin(nil)...)
	require.NoError(t, err)
	assert.Equal(t, []string{
		DigitalQuoteResponse, JobAssignment, JobCompleted,
		TrainingAssignment, GaugeCalibrationExpired, ApprovalRequested,
	}, r.IDs())
	assert.Equal(t, 6, r.Count())
	assert.NotEmpty(t, r.Info()[0].Description)

	err = r.Register(&Definition{Name: JobCompleted})
	assert.ErrorContains(t, err, "already registered")

	assert.Error(t, r.Register(&Definition{}))
	assert.Error(t, r.Register(nil))
}

func TestBuiltin_Disabled(t *testing.T) {
	ws := Builtin(nil, JobCompleted, ApprovalRequested)
	ids := make([]string, len(ws))
	for i, w := range ws {
		ids[i] = w.ID()
	}
	assert.NotContains(t, ids, JobCompleted)
	assert.NotContains(t, ids, ApprovalRequested)
	assert.Len(t, ids, 4)
}

func TestBuiltin_Render(t *testing.T) {
	tests := []struct {
		render  RenderFunc
		data    string
		title   string
		body    string
		wantErr string
	}{
		{renderQuoteResponse, `{"quoteId":"Q1","customerName":"Acme","status":"accepted"}`, "Quote Q1 accepted", "Acme accepted digital quote Q1.", ""},
		{renderQuoteResponse, `{"quoteId":"Q1","status":"maybe"}`, "", "", "status must be"},
		{renderJobAssignment, `{"jobId":"J7","operation":"Deburr"}`, "New job assignment", "You were assigned to Deburr on job J7.", ""},
		{renderTrainingAssignment, `{"title":"Forklift","dueAt":"2026-04-01"}`, "New training assigned", `You have been assigned "Forklift", due 2026-04-01.`, ""},
		{renderGaugeExpired, `{"gaugeId":"G9","description":"Micrometer"}`, "Gauge calibration expired", "Gauge G9 (Micrometer) is out of calibration.", ""},
		{renderApprovalRequested, `{"documentType":"Purchase Order","documentId":"PO5"}`, "Approval requested", "Purchase Order PO5 needs your approval.", ""},
		{renderApprovalRequested, `{"documentType":"Purchase Order"}`, "", "", "missing documentId"},
		{renderJobCompleted, ``, "", "", "missing data"},
		{renderJobCompleted, `[1]`, "", "", "invalid data"},
	}

	for _, tt := range tests {
		msg, err := tt.render(json.RawMessage(tt.data))
		if tt.wantErr != "" {
			assert.ErrorContains(t, err, tt.wantErr, tt.data)
			continue
		}
		require.NoError(t, err, tt.data)
		assert.Equal(t, tt.title, msg.Title)
		assert.Equal(t, tt.body, msg.Body)
	}
}

func TestSignVerify(t *testing.T) {
	key := []byte("k")
	sig := Sign(key, []byte("body"))
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.True(t, Verify(key, []byte("body"), sig))
	assert.False(t, Verify(key, []byte("other"), sig))
	assert.False(t, Verify([]byte("j"), []byte("body"), sig))
	assert.False(t, Verify(key, []byte("body"), strings.TrimPrefix(sig, "sha256=")))
	assert.False(t, Verify(key, []byte("body"), "sha256=zz"))
}

func newTestHandler(t *testing.T, key string, m *metrics.Metrics, hm *hooks.Manager) (*Handler, *collector) {
	t.Helper()
	c := &collector{}
	h, err := Serve(Options{SigningKey: key, Log: logging.New(nil, "silent"), Metrics: m, Hooks: hm}, Builtin(c)...)
	require.NoError(t, err)
	return h, c
}

func post(h http.Handler, body, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/workflows", strings.NewReader(body))
	if sig != "" {
		req.Header.Set(SignatureHeader, sig)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServe_DuplicateRejected(t *testing.T) {
	_, err := Serve(Options{}, &Definition{Name: "a"}, &Definition{Name: "a"})
	assert.Error(t, err)
}

func TestServe_Loader(t *testing.T) {
	h, _ := newTestHandler(t, "", nil, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/workflows", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Workflows []Info `json:"workflows"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Workflows, 6)
	assert.Equal(t, DigitalQuoteResponse, body.Workflows[0].ID)
}

func TestServe_ActionUnsigned(t *testing.T) {
	m := metrics.New()
	hm := hooks.NewManager(logging.New(nil, "silent"))
	var completed []string
	hm.On(hooks.EventWorkflowCompleted, "test", func(_ context.Context, p hooks.Payload) error {
		completed = append(completed, p.Data["workflow"].(string))
		return nil
	})
	h, c := newTestHandler(t, "", m, hm)

	rr := post(h, `{"workflowId":"job-completed","companyId":"acme","recipients":["u1"],"data":{"jobId":"J1"}}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Delivered)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "Job J1 is complete.", c.sent[0].Body)
	assert.Equal(t, []string{JobCompleted}, completed)
	n, err := testutil.GatherAndCount(m.Registry(), "suite_workflow_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestServe_ActionErrors(t *testing.T) {
	h, _ := newTestHandler(t, "", nil, nil)

	assert.Equal(t, http.StatusNotFound, post(h, `{"workflowId":"nope","recipients":["u"]}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"recipients":["u"]}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"workflowId":"x","extra":1}`, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(h, `{"workflowId":"job-completed","recipients":["u"],"data":{}}`, "").Code)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/workflows", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestServe_OversizedBody(t *testing.T) {
	body := `{"workflowId":"job-completed","recipients":["u1"],"data":{"jobId":"` + strings.Repeat("x", maxEventBytes) + `"}}`

	h, c := newTestHandler(t, "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, post(h, body, "").Code)
	assert.Empty(t, c.sent)

	signed, c := newTestHandler(t, "secret", nil, nil)
	assert.Equal(t, http.StatusBadRequest, post(signed, body, Sign([]byte("secret"), []byte(body))).Code)
	assert.Empty(t, c.sent)
}

func TestServe_Signed(t *testing.T) {
	h, c := newTestHandler(t, "secret", nil, nil)
	body := `{"workflowId":"job-assignment","recipients":["u1"],"data":{"jobId":"J2"}}`

	assert.Equal(t, http.StatusUnauthorized, post(h, body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(h, body, Sign([]byte("wrong"), []byte(body))).Code)
	assert.Empty(t, c.sent)

	rr := post(h, body, Sign([]byte("secret"), []byte(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, c.sent, 1)

	get := httptest.NewRequest("GET", "/api/workflows", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, get)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	get = httptest.NewRequest("GET", "/api/workflows", nil)
	get.Header.Set(SignatureHeader, Sign([]byte("secret"), nil))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, get)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_Trigger(t *testing.T) {
	h, c := newTestHandler(t, "secret", nil, nil)
	_, err := h.Trigger(context.Background(), Event{WorkflowID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownWorkflow)

	res, err := h.Trigger(context.Background(), Event{
		WorkflowID: TrainingAssignment,
		Recipients: []string{"u1", "u2"},
		Data:       json.RawMessage(`{"title":"Lockout/Tagout"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Delivered)
	assert.Len(t, c.sent, 2)
}
