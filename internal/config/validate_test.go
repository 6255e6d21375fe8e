package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func issuePaths(issues []ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Path)
	}
	return out
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Server(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 70000
	cfg.Server.Bind = "tailnet"
	cfg.Server.TLS.Enabled = true

	assert.ElementsMatch(t,
		[]string{"server.port", "server.bind", "server.tls"},
		issuePaths(Validate(&cfg)))
}

func TestValidate_Logging(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	cfg.Logging.ConsoleStyle = "compact"

	assert.ElementsMatch(t,
		[]string{"logging.level", "logging.consoleStyle"},
		issuePaths(Validate(&cfg)))
}

func TestValidate_Tokens(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Roles = map[string][]string{
		"planner": {"view:production", "approve:production"},
	}
	cfg.Auth.Tokens = []TokenEntry{
		{Token: "a", UserID: "u1", CompanyID: "c1", Role: "planner"},
		{Token: "a", UserID: "u2", CompanyID: "c1"},
		{UserID: "", CompanyID: "", Role: "ghost", Permissions: []string{"nope"}},
	}

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "auth.roles.planner")
	assert.Contains(t, paths, "auth.tokens[1].token")
	assert.Contains(t, paths, "auth.tokens[2].token")
	assert.Contains(t, paths, "auth.tokens[2].userId")
	assert.Contains(t, paths, "auth.tokens[2].companyId")
	assert.Contains(t, paths, "auth.tokens[2].role")
	assert.Contains(t, paths, "auth.tokens[2].permissions")
}

func TestValidate_ValidTokens(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Roles = map[string][]string{"admin": {"*:*"}}
	cfg.Auth.Tokens = []TokenEntry{
		{Token: "t1", UserID: "u1", CompanyID: "c1", Role: "admin"},
		{Token: "t2", UserID: "u2", CompanyID: "c1", Permissions: []string{"view:sales"}},
	}
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Misc(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.RateLimit.PerMinute = -1
	cfg.Auth.RateLimit.Burst = -2
	cfg.Agents.Extra = []AgentEntry{{Description: "nameless"}}
	cfg.UI.IdleMinutes = -5
	cfg.UI.MaxSessions = -1

	assert.ElementsMatch(t,
		[]string{"auth.rateLimit.perMinute", "auth.rateLimit.burst", "agents.extra[0].name", "ui.idleMinutes", "ui.maxSessions"},
		issuePaths(Validate(&cfg)))
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "server.port", Message: "bad"}
	assert.Equal(t, "server.port: bad", issue.String())
}
