// Package workflow registers notification workflows and exposes them over
// HTTP as a loader/action pair.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/suite/internal/domain"
)

// ErrUnknownWorkflow is returned when an event names an unregistered workflow.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// Event is one trigger of a workflow.
type Event struct {
	WorkflowID string          `json:"workflowId"`
	CompanyID  string          `json:"companyId"`
	Recipients []string        `json:"recipients"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Result reports what a run delivered.
type Result struct {
	RunID         string                `json:"runId"`
	WorkflowID    string                `json:"workflowId"`
	Delivered     int                   `json:"delivered"`
	Notifications []domain.Notification `json:"notifications"`
}

// Workflow is a named, triggerable notification flow.
type Workflow interface {
	ID() string
	Run(ctx context.Context, ev Event) (Result, error)
}

// Describer is implemented by workflows that carry a human description.
type Describer interface {
	Description() string
}

// Notifier delivers a rendered notification.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) error { return f(ctx, n) }

// Message is the rendered content of a notification.
type Message struct {
	Title string
	Body  string
	Link  string
}

// RenderFunc turns event data into a message.
type RenderFunc func(data json.RawMessage) (Message, error)

// Definition is a Workflow that renders one message and delivers a copy
// to every recipient.
type Definition struct {
	Name    string
	Summary string
	Render  RenderFunc
	Notify  Notifier

	now func() time.Time
}

func (d *Definition) ID() string          { return d.Name }
func (d *Definition) Description() string { return d.Summary }

// Run renders the event and delivers it. Delivery stops at the first
// notifier error; the result counts what went out before it.
func (d *Definition) Run(ctx context.Context, ev Event) (Result, error) {
	res := Result{RunID: uuid.NewString(), WorkflowID: d.Name}
	if len(ev.Recipients) == 0 {
		return res, fmt.Errorf("workflow %s: no recipients", d.Name)
	}

	msg, err := d.Render(ev.Data)
	if err != nil {
		return res, fmt.Errorf("workflow %s: render: %w", d.Name, err)
	}

	var data map[string]any
	if len(ev.Data) > 0 {
		// Render already validated the payload shape.
		_ = json.Unmarshal(ev.Data, &data)
	}

	now := time.Now
	if d.now != nil {
		now = d.now
	}
	for _, user := range ev.Recipients {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := domain.Notification{
			ID:         uuid.NewString(),
			WorkflowID: d.Name,
			CompanyID:  ev.CompanyID,
			UserID:     user,
			Title:      msg.Title,
			Body:       msg.Body,
			Link:       msg.Link,
			Data:       data,
			CreatedAt:  now().UTC(),
		}
		if d.Notify != nil {
			if err := d.Notify.Notify(ctx, n); err != nil {
				return res, fmt.Errorf("workflow %s: notify %s: %w", d.Name, user, err)
			}
		}
		res.Notifications = append(res.Notifications, n)
		res.Delivered++
	}
	return res, nil
}
