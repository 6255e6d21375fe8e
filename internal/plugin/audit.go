package plugin

import (
	"context"

	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/hooks"
)

// AuditSink stores audit events.
type AuditSink interface {
	Record(ctx context.Context, e domain.AuditEvent) (*domain.AuditEvent, error)
}

// AuditedEvents are the hook events the audit plugin records.
var AuditedEvents = []string{
	hooks.EventAccessDenied,
	hooks.EventWorkflowCompleted,
	hooks.EventWorkflowFailed,
	hooks.EventNotificationSent,
	hooks.EventTrainingCompleted,
}

// Audit records selected hook events into a sink. The "company" and
// "user" keys of the payload become the event's owner columns.
type Audit struct {
	sink   AuditSink
	hooks  *hooks.Manager
	events []string
}

// NewAudit creates the audit plugin.
func NewAudit(sink AuditSink) *Audit {
	return &Audit{sink: sink, events: AuditedEvents}
}

func (a *Audit) ID() string   { return "audit" }
func (a *Audit) Name() string { return "Audit trail" }

func (a *Audit) Init(_ context.Context, api API) error {
	a.hooks = api.Hooks
	for _, ev := range a.events {
		a.hooks.On(ev, a.ID(), a.record)
	}
	api.Log.Debug().Strs("events", a.events).Msg("audit trail enabled")
	return nil
}

func (a *Audit) Close() error {
	for _, ev := range a.events {
		a.hooks.Off(ev, a.ID())
	}
	return nil
}

func (a *Audit) record(ctx context.Context, p hooks.Payload) error {
	e := domain.AuditEvent{Event: p.Event, Data: make(map[string]any, len(p.Data))}
	for k, v := range p.Data {
		switch k {
		case "company":
			e.CompanyID, _ = v.(string)
		case "user":
			e.UserID, _ = v.(string)
		default:
			e.Data[k] = v
		}
	}
	_, err := a.sink.Record(context.WithoutCancel(ctx), e)
	return err
}
