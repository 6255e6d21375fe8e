package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/gateway"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with SUITE_HOME pointed at a temp dir
// holding configYAML.
func run(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SUITE_HOME", home)
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(configYAML), 0o600))
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "silent"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("TRUE"))
	assert.Equal(t, false, parseValue("false"))
	assert.Equal(t, 8080, parseValue("8080"))
	assert.Equal(t, 1.5, parseValue("1.5"))
	assert.Equal(t, "loopback", parseValue("loopback"))
	assert.Equal(t, true, parseValue("on"))
}

func TestPrintValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printValue(&buf, "x"))
	require.NoError(t, printValue(&buf, map[string]any{"a": 1}))
	assert.Equal(t, "x\na: 1\n", buf.String())
}

func TestLocalURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:18790", localURL(config.ServerConfig{Bind: "lan", Port: 18790}))
	assert.Equal(t, "https://10.1.2.3:443", localURL(config.ServerConfig{Bind: "custom", CustomBindHost: "10.1.2.3", Port: 443, TLS: config.ServerTLS{Enabled: true}}))
}

func TestConfigSetGetUnset(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SUITE_HOME", home)

	exec := func(args ...string) string {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"--log-level", "silent"}, args...))
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	require.NoError(t, os.MkdirAll(home, 0o700))
	assert.Contains(t, exec("config", "set", "server.port", "9000"), "server.port = 9000")
	assert.Equal(t, "9000\n", exec("config", "get", "server.port"))
	assert.Contains(t, exec("config", "unset", "server.port"), "removed server.port")

	assert.Contains(t, exec("config", "set", "workflows.signingKey", "s3cret"), "<redacted>")
	assert.Equal(t, "<redacted>\n", exec("config", "get", "workflows.signingKey"))
	assert.Equal(t, "s3cret\n", exec("config", "get", "workflows.signingKey", "--reveal"))
	assert.Equal(t, filepath.Join(home, "config.yaml")+"\n", exec("config", "path"))
}

func TestConfigValidate(t *testing.T) {
	out, err := run(t, "server:\n  port: 18790\n", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	out, err = run(t, "server:\n  port: 99999\n", "config", "validate")
	assert.Error(t, err)
	assert.Contains(t, out, "server.port")
}

func TestAgentsList(t *testing.T) {
	cfg := `
agents:
  defaultModel: small
  extra:
    - name: sales
      description: overridden
`
	out, err := run(t, cfg, "agents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "quality")
	assert.Contains(t, out, "overridden")
	assert.Contains(t, out, `warning: agent "sales" defined more than once`)
}

func TestWorkflowsList(t *testing.T) {
	out, err := run(t, "workflows:\n  disabled: [job-completed]\n", "workflows", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "digital-quote-response")
	assert.Contains(t, out, "disabled: job-completed")
}

func TestWorkflowsTrigger(t *testing.T) {
	log := logging.New(nil, "silent")
	db, err := store.Open(":memory:", log)
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Defaults()
	cfg.Workflows.SigningKey = "k"
	srv, err := gateway.New(cfg, db, log)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	out, err := run(t, "workflows:\n  signingKey: k\n",
		"workflows", "trigger", "job-completed", "--server", ts.URL, "--to", "u1,u2", "--data", `{"jobId":"J1"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "delivered 2 notification(s)")

	_, err = run(t, "workflows:\n  signingKey: wrong\n",
		"workflows", "trigger", "job-completed", "--server", ts.URL, "--to", "u1", "--data", `{"jobId":"J1"}`)
	assert.ErrorContains(t, err, "401")

	_, err = run(t, "", "workflows", "trigger", "job-completed", "--server", ts.URL)
	assert.ErrorContains(t, err, "recipient")
}

func TestPartiesImport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "parties.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
customers:
  - id: initech
    name: Initech
suppliers:
  - id: steelco
    name: Steelco
    risks:
      - title: Late deliveries
        severity: 3
        likelihood: 2
      - title: Single source
        severity: 5
        likelihood: 4
        status: in_review
`), 0o600))

	out, err := run(t, "", "parties", "import", file, "--company", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 parties and 2 risks for acme")

	home := os.Getenv("SUITE_HOME")
	db, err := store.Open(filepath.Join(home, "data", "suite.db"), logging.New(nil, "silent"))
	require.NoError(t, err)
	defer db.Close()

	register, err := store.NewPartyStore(db).RiskRegister(context.Background(), "acme", domain.PartySupplier, "steelco")
	require.NoError(t, err)
	require.Len(t, register, 2)
	assert.Equal(t, "Single source", register[0].Title)
	assert.Equal(t, domain.RiskInReview, register[0].Status)
}

func TestPartiesImportErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "parties.yaml")
	require.NoError(t, os.WriteFile(file, []byte("suppliers:\n  - id: x\n    nmae: typo\n"), 0o600))

	_, err := run(t, "", "parties", "import", file)
	assert.ErrorContains(t, err, "--company is required")

	_, err = run(t, "", "parties", "import", file, "--company", "acme")
	assert.ErrorContains(t, err, "nmae")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "suite")
}

func TestRoot_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("SUITE_HOME", t.TempDir())
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--log-level", "chatty", "version"})
	assert.ErrorContains(t, cmd.Execute(), `unknown log level "chatty"`)
}
