package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/route"
	"github.com/soyeahso/suite/internal/uistate"
	"github.com/soyeahso/suite/internal/version"
)

func need(action, module string) domain.Capability {
	return domain.Cap(action, module)
}

// registerRoutes sets up every HTTP route on mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	g := s.gate

	// Module landing routes only check access; the page supplies its own data.
	for _, module := range []string{
		domain.ModuleSales,
		domain.ModulePurchasing,
		domain.ModuleProduction,
		domain.ModuleQuality,
		domain.ModuleResources,
	} {
		mux.Handle("GET /x/"+module, g.Gate(module, route.Empty, need(domain.ActionView, module)))
	}

	mux.Handle("GET /x/customer/{customerId}",
		g.Gate("customer", s.partyLoader(domain.PartyCustomer, "customerId"), need(domain.ActionView, domain.ModuleSales)))
	mux.Handle("GET /x/customer/{customerId}/risks",
		g.Gate("customer-risks", s.riskRegisterLoader(domain.PartyCustomer, "customerId"), need(domain.ActionView, domain.ModuleSales)))
	mux.Handle("GET /x/supplier/{supplierId}",
		g.Gate("supplier", s.partyLoader(domain.PartySupplier, "supplierId"), need(domain.ActionView, domain.ModulePurchasing)))
	mux.Handle("GET /x/supplier/{supplierId}/risks",
		g.Gate("supplier-risks", s.riskRegisterLoader(domain.PartySupplier, "supplierId"), need(domain.ActionView, domain.ModulePurchasing)))

	mux.Handle("GET /api/training/outstanding",
		g.Gate("training-outstanding", s.outstandingTraining, need(domain.ActionView, domain.ModuleResources)))
	mux.Handle("POST /api/training",
		g.Gate("training-assign", s.assignTraining, need(domain.ActionCreate, domain.ModuleResources)))
	mux.Handle("POST /api/training/{assignmentId}/complete",
		g.Gate("training-complete", s.completeTraining, need(domain.ActionUpdate, domain.ModuleResources)))

	mux.Handle("GET /api/agents", g.Gate("agents", s.listAgents, need(domain.ActionView, domain.ModuleSettings)))
	mux.Handle("GET /api/agents/{name}", g.Gate("agent", s.getAgent, need(domain.ActionView, domain.ModuleSettings)))

	mux.Handle("GET /api/workflows", s.workflows.Loader)
	mux.Handle("POST /api/workflows", s.workflows.Action)

	mux.Handle("GET /api/notifications", g.Gate("notifications", s.notifications))
	mux.Handle("GET /api/notifications/ws", s.hub.SocketHandler(s.auth, checkWebSocketOrigin(s.cfg.Server.AllowedOrigins)))

	var ui uistate.Handler
	mux.Handle("GET /api/ui/state", s.sessions.Middleware(http.HandlerFunc(ui.State)))
	mux.Handle("POST /api/ui/search-modal/{op}", s.sessions.Middleware(http.HandlerFunc(ui.SearchModal)))

	mux.Handle("GET /api/audit", g.Gate("audit", s.auditTrail, need(domain.ActionView, domain.ModuleSettings)))
	mux.Handle("GET /api/status", g.Gate("status", s.status, need(domain.ActionView, domain.ModuleSettings)))
	mux.HandleFunc("GET /health", handleHealth)
	if s.cfg.Server.Metrics && s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("/", handleNotFound)
}

func (s *Server) status(ctx context.Context, req *route.Request) (any, error) {
	uptime := time.Duration(0)
	if !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Round(time.Second)
	}
	resp := StatusResponse{
		Status:      "ok",
		Version:     version.Version,
		Uptime:      uptime.String(),
		Agents:      s.agents.Len(),
		Workflows:   s.workflows.Registry().IDs(),
		Subscribers: s.hub.Count(),
		UISessions:  s.sessions.Len(),
	}
	if s.db != nil {
		v, err := s.db.SchemaVersion(ctx)
		if err == nil {
			err = s.db.Ping(ctx)
		}
		if err != nil {
			req.Log.Warn().Err(err).Msg("database check failed")
			resp.Status = "degraded"
		}
		resp.Schema = v
	}
	return resp, nil
}

// handleHealth is public and reveals nothing beyond liveness.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	route.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	route.WriteJSON(w, http.StatusNotFound, route.ErrorBody{Error: "not_found", Message: r.URL.Path})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
