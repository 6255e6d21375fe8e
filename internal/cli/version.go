package cli

import (
	"encoding/json"
	"fmt"

	"github.com/soyeahso/suite/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(version.Build())
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build info as JSON")
	return cmd
}
