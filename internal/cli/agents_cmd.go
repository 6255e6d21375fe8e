package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/soyeahso/suite/internal/agents"
	"github.com/soyeahso/suite/internal/config"
	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect the agent registry",
	}
	cmd.AddCommand(newAgentsListCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the agents the server would register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			reg := agents.NewRegistry(log, agents.Providers(cfg.Agents)...)
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODEL\tREQUIRES\tDESCRIPTION")
			for _, a := range reg.List() {
				model := a.Model
				if model == "" {
					model = "-"
				}
				req := strings.Join(a.Requires(), ",")
				if req == "" {
					req = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, model, req, a.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, c := range reg.Collisions() {
				fmt.Fprintf(out, "warning: agent %q defined more than once; entry %d replaced entry %d\n", c.Name, c.Kept, c.Replaced)
			}
			return nil
		},
	}
}
