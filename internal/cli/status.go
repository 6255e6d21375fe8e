package cli

import (
	"fmt"
	"strings"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/gateway"
	"github.com/soyeahso/suite/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		server string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration summary and the state of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "suite %s (commit %s)\n\n", version.Version, version.Commit)
			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:    %s\n\n", paths.Logs)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Server:  %s bind=%s tls=%v metrics=%v\n",
				gateway.ResolveBindAddr(cfg.Server), cfg.Server.Bind, cfg.Server.TLS.Enabled, cfg.Server.Metrics)
			fmt.Fprintf(out, "Store:   %s\n", paths.DBPath(cfg.Store))
			fmt.Fprintf(out, "Auth:    %d token(s), %d role(s)\n", len(cfg.Auth.Tokens), len(cfg.Auth.Roles))
			signed := "unsigned"
			if cfg.Workflows.SigningKey != "" {
				signed = "signed"
			}
			fmt.Fprintf(out, "Workflows: %s", signed)
			if len(cfg.Workflows.Disabled) > 0 {
				fmt.Fprintf(out, ", disabled=%s", strings.Join(cfg.Workflows.Disabled, ","))
			}
			fmt.Fprintln(out)

			if issues := config.Validate(&cfg); len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}

			var st gateway.StatusResponse
			client := newAPIClient(cfg, server, token)
			if err := client.do("GET", "/api/status", nil, false, &st); err != nil {
				fmt.Fprintf(out, "\nRunning: no (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "\nRunning: %s up %s\n", st.Version, st.Uptime)
			fmt.Fprintf(out, "  agents=%d workflows=%d subscribers=%d ui-sessions=%d\n",
				st.Agents, len(st.Workflows), st.Subscribers, st.UISessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "API token (default $SUITE_TOKEN)")
	return cmd
}
