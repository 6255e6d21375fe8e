package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/route"
	"github.com/soyeahso/suite/internal/workflow"
)

// apiClient talks to a running suite server.
type apiClient struct {
	base       string
	token      string
	signingKey string
	http       *http.Client
}

func newAPIClient(cfg config.Config, server, token string) *apiClient {
	if server == "" {
		server = localURL(cfg.Server)
	}
	if token == "" {
		token = os.Getenv("SUITE_TOKEN")
	}
	return &apiClient{
		base:       server,
		token:      token,
		signingKey: cfg.Workflows.SigningKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// localURL is where a server started with cfg can be reached from this host.
func localURL(cfg config.ServerConfig) string {
	scheme := "http"
	if cfg.TLS.Enabled {
		scheme = "https"
	}
	host := "127.0.0.1"
	if cfg.Bind == "custom" && cfg.CustomBindHost != "" && cfg.CustomBindHost != "0.0.0.0" {
		host = cfg.CustomBindHost
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(cfg.Port))
}

func (c *apiClient) do(method, path string, body []byte, sign bool, out any) error {
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if sign && c.signingKey != "" {
		req.Header.Set(workflow.SignatureHeader, workflow.Sign([]byte(c.signingKey), body))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e route.ErrorBody
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %d %s: %s", method, path, resp.StatusCode, e.Error, e.Message)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
