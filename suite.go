// Package suite is the public surface of the suite server. It re-exports
// the types embedders need so they import one package instead of many.
package suite

import (
	"github.com/soyeahso/suite/internal/agents"
	"github.com/soyeahso/suite/internal/authz"
	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/gateway"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/plugin"
	"github.com/soyeahso/suite/internal/route"
	"github.com/soyeahso/suite/internal/uistate"
	"github.com/soyeahso/suite/internal/workflow"
)

// Permissions.
type (
	Capability    = domain.Capability
	CapabilitySet = domain.CapabilitySet
	Caller        = domain.Caller
	DeniedError   = authz.DeniedError
	Authorizer    = authz.Authorizer
)

var (
	Cap                = domain.Cap
	ParseCapability    = domain.ParseCapability
	ErrUnauthenticated = authz.ErrUnauthenticated
	ErrForbidden       = authz.ErrForbidden
	ErrNotFound        = domain.ErrNotFound
)

// Routes.
type (
	Loader            = route.Loader
	Request           = route.Request
	Gatekeeper        = route.Gatekeeper
	PermissionChecker = route.PermissionChecker
	MissingParamError = route.MissingParamError
)

var (
	Empty         = route.Empty
	MustParam     = route.MustParam
	Param         = route.Param
	NewGatekeeper = route.NewGatekeeper
)

// Agents.
type (
	AgentConfig   = agents.Config
	AgentProvider = agents.Provider
	AgentRegistry = agents.Registry
)

var (
	NewAgentRegistry = agents.NewRegistry
	BuiltinAgents    = agents.Builtin
)

// Workflows.
type (
	Workflow         = workflow.Workflow
	WorkflowEvent    = workflow.Event
	WorkflowResult   = workflow.Result
	WorkflowHandler  = workflow.Handler
	WorkflowOptions  = workflow.Options
	Notifier         = workflow.Notifier
	Notification     = domain.Notification
	WorkflowRegistry = workflow.Registry
)

var (
	Serve            = workflow.Serve
	BuiltinWorkflows = workflow.Builtin
)

// UI state.
type (
	UIStore    = uistate.Store
	UIState    = uistate.State
	UISessions = uistate.Sessions
)

var (
	NewUIStore  = uistate.NewStore
	UIStoreFrom = uistate.FromContext
)

// Server.
type (
	Config       = config.Config
	Server       = gateway.Server
	ServerOption = gateway.ServerOption
	HookManager  = hooks.Manager
	Logger       = logging.Logger
	Plugin       = plugin.Plugin
	AuditEvent   = domain.AuditEvent
)

var (
	NewServer      = gateway.New
	LoadConfig     = config.Load
	DefaultConfig  = config.Defaults
	NewHookManager = hooks.NewManager
	NewLogger      = logging.New
	NewNopLogger   = logging.Nop
)
