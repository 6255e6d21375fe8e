package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/plugin"
	"github.com/soyeahso/suite/internal/route"
	"github.com/soyeahso/suite/internal/workflow"
)

// TrainingRecords is the training data-access collaborator.
type TrainingRecords interface {
	Assign(ctx context.Context, a domain.TrainingAssignment) (*domain.TrainingAssignment, error)
	Outstanding(ctx context.Context, companyID, userID string) ([]domain.TrainingAssignment, error)
	Complete(ctx context.Context, companyID, userID, assignmentID string, at time.Time) error
}

// PartyDirectory resolves customers, suppliers and their risk registers.
type PartyDirectory interface {
	GetParty(ctx context.Context, companyID string, kind domain.PartyKind, id string) (*domain.Party, error)
	RiskRegister(ctx context.Context, companyID string, source domain.PartyKind, sourceID string) ([]domain.Risk, error)
}

// AuditLog lists recorded lifecycle events.
type AuditLog interface {
	plugin.AuditSink
	Recent(ctx context.Context, companyID string, limit int) ([]domain.AuditEvent, error)
}

type riskRow struct {
	domain.Risk
	Score int `json:"score"`
}

// RiskRegisterView is the payload of the customer and supplier risk pages.
type RiskRegisterView struct {
	Party domain.Party `json:"party"`
	Risks []riskRow    `json:"risks"`
	Open  int          `json:"open"`
}

// partyLoader renders the header of a customer or supplier page.
func (s *Server) partyLoader(kind domain.PartyKind, param string) route.Loader {
	return func(ctx context.Context, req *route.Request) (any, error) {
		id := route.MustParam(req, param)
		return s.parties.GetParty(ctx, req.Caller.CompanyID, kind, id)
	}
}

// riskRegisterLoader renders the risk register bound to the party in the path.
func (s *Server) riskRegisterLoader(kind domain.PartyKind, param string) route.Loader {
	return func(ctx context.Context, req *route.Request) (any, error) {
		id := route.MustParam(req, param)

		party, err := s.parties.GetParty(ctx, req.Caller.CompanyID, kind, id)
		if err != nil {
			return nil, err
		}
		risks, err := s.parties.RiskRegister(ctx, req.Caller.CompanyID, kind, id)
		if err != nil {
			return nil, err
		}

		view := RiskRegisterView{Party: *party, Risks: make([]riskRow, 0, len(risks))}
		for _, r := range risks {
			view.Risks = append(view.Risks, riskRow{Risk: r, Score: r.Score()})
			if r.Status == domain.RiskOpen || r.Status == domain.RiskInReview {
				view.Open++
			}
		}
		return view, nil
	}
}

type outstandingRow struct {
	domain.TrainingAssignment
	Overdue bool `json:"overdue"`
}

func (s *Server) outstandingTraining(ctx context.Context, req *route.Request) (any, error) {
	list, err := s.training.Outstanding(ctx, req.Caller.CompanyID, req.Caller.UserID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	rows := make([]outstandingRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, outstandingRow{TrainingAssignment: a, Overdue: a.Overdue(now)})
	}
	return map[string]any{"assignments": rows}, nil
}

func (s *Server) completeTraining(ctx context.Context, req *route.Request) (any, error) {
	id := route.MustParam(req, "assignmentId")
	now := time.Now().UTC()
	if err := s.training.Complete(ctx, req.Caller.CompanyID, req.Caller.UserID, id, now); err != nil {
		return nil, err
	}
	s.hooks.Emit(ctx, hooks.EventTrainingCompleted, map[string]any{
		"assignment": id,
		"user":       req.Caller.UserID,
		"company":    req.Caller.CompanyID,
	})
	return map[string]any{"id": id, "completedAt": now}, nil
}

type assignTrainingRequest struct {
	UserID     string     `json:"userId"`
	TrainingID string     `json:"trainingId"`
	Title      string     `json:"title"`
	DueAt      *time.Time `json:"dueAt,omitempty"`
}

// assignTraining records an assignment in the caller's company and
// notifies the assignee through the training-assignment workflow.
func (s *Server) assignTraining(ctx context.Context, req *route.Request) (any, error) {
	var in assignTrainingRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	if in.UserID == "" || in.Title == "" {
		return nil, route.BadRequest("userId and title are required")
	}

	a, err := s.training.Assign(ctx, domain.TrainingAssignment{
		CompanyID:  req.Caller.CompanyID,
		UserID:     in.UserID,
		TrainingID: in.TrainingID,
		Title:      in.Title,
		DueAt:      in.DueAt,
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{"assignmentId": a.ID, "title": a.Title}
	if a.DueAt != nil {
		data["dueAt"] = a.DueAt.Format(time.DateOnly)
	}
	if _, ok := s.workflows.Registry().Get(workflow.TrainingAssignment); ok {
		ev := workflow.Event{
			WorkflowID: workflow.TrainingAssignment,
			CompanyID:  a.CompanyID,
			Recipients: []string{a.UserID},
			Data:       mustJSON(data),
		}
		if _, err := s.workflows.Trigger(ctx, ev); err != nil {
			req.Log.Warn().Err(err).Str("assignment", a.ID).Msg("training notification failed")
		}
	}
	return a, nil
}

func (s *Server) listAgents(context.Context, *route.Request) (any, error) {
	type agentView struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Model       string   `json:"model,omitempty"`
		Tools       []string `json:"tools,omitempty"`
		Requires    []string `json:"requires,omitempty"`
	}
	list := s.agents.List()
	out := make([]agentView, 0, len(list))
	for _, c := range list {
		out = append(out, agentView{Name: c.Name, Description: c.Description, Model: c.Model, Tools: c.Tools, Requires: c.Requires()})
	}
	return map[string]any{"agents": out, "collisions": s.agents.Collisions()}, nil
}

func (s *Server) getAgent(_ context.Context, req *route.Request) (any, error) {
	name := route.MustParam(req, "name")
	c, ok := s.agents.Get(name)
	if !ok {
		if alt, found := s.agents.Suggest(name); found {
			return nil, fmt.Errorf("%w: agent %q, did you mean %q?", domain.ErrNotFound, name, alt)
		}
		return nil, fmt.Errorf("%w: agent %q", domain.ErrNotFound, name)
	}
	return c, nil
}

func (s *Server) notifications(_ context.Context, req *route.Request) (any, error) {
	return map[string]any{"notifications": s.hub.Recent(req.Caller)}, nil
}

// auditTrail lists the caller's company events. The store clamps limit
// to 1..500.
func (s *Server) auditTrail(ctx context.Context, req *route.Request) (any, error) {
	limit := 100
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, route.BadRequest("limit must be an integer")
		}
		limit = n
	}
	events, err := s.audit.Recent(ctx, req.Caller.CompanyID, limit)
	if err != nil {
		return nil, err
	}
	return map[string]any{"events": events}, nil
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Status      string   `json:"status"`
	Version     string   `json:"version"`
	Uptime      string   `json:"uptime"`
	Agents      int      `json:"agents"`
	Workflows   []string `json:"workflows"`
	Subscribers int      `json:"subscribers"`
	UISessions  int      `json:"uiSessions"`
	Schema      int      `json:"schema,omitempty"`
}
