package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/workflow"
	"github.com/spf13/cobra"
)

func newWorkflowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "List or trigger notification workflows",
	}
	cmd.AddCommand(newWorkflowsListCmd())
	cmd.AddCommand(newWorkflowsTriggerCmd())
	return cmd
}

func newWorkflowsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List enabled workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			reg, err := workflow.NewRegistry(workflow.Builtin(nil, cfg.Workflows.Disabled...)...)
			if err != nil {
				return err
			}
			for _, info := range reg.Info() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", info.ID, info.Description)
			}
			if len(cfg.Workflows.Disabled) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\ndisabled: %s\n", strings.Join(cfg.Workflows.Disabled, ", "))
			}
			return nil
		},
	}
}

func newWorkflowsTriggerCmd() *cobra.Command {
	var (
		server     string
		company    string
		recipients []string
		data       string
	)

	cmd := &cobra.Command{
		Use:   "trigger <workflow-id>",
		Short: "Trigger a workflow on a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if len(recipients) == 0 {
				return fmt.Errorf("at least one --to recipient is required")
			}

			ev := workflow.Event{WorkflowID: args[0], CompanyID: company, Recipients: recipients}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				ev.Data = json.RawMessage(data)
			}
			body, err := json.Marshal(ev)
			if err != nil {
				return err
			}

			var res workflow.Result
			client := newAPIClient(cfg, server, "")
			if err := client.do("POST", "/api/workflows", body, true, &res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: delivered %d notification(s)\n", res.RunID, res.Delivered)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default from config)")
	cmd.Flags().StringVar(&company, "company", "", "company the notification belongs to")
	cmd.Flags().StringSliceVar(&recipients, "to", nil, "recipient user IDs")
	cmd.Flags().StringVar(&data, "data", "", "JSON payload for the workflow")
	return cmd
}
