package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soyeahso/suite/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set configuration values",
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.ParseKeyPath(args[0])
			if err != nil {
				return err
			}
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				return err
			}
			val, ok := key.Lookup(raw)
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			if key.Secret() && !reveal {
				val = redacted
			}
			return printValue(cmd.OutOrStdout(), val)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print credentials instead of "+redacted)
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.ParseKeyPath(args[0])
			if err != nil {
				return err
			}
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				return err
			}

			value := parseValue(args[1])
			if err := key.Set(raw, value); err != nil {
				return err
			}
			if err := config.SaveRaw(paths.Config, raw); err != nil {
				return err
			}

			shown := value
			if key.Secret() {
				shown = redacted
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, shown)
			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.ParseKeyPath(args[0])
			if err != nil {
				return err
			}
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				return err
			}
			if !key.Unset(raw) {
				return fmt.Errorf("key %q not found", args[0])
			}
			if err := config.SaveRaw(paths.Config, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", key)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			issues := config.Validate(&cfg)
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s: ok\n", paths.Config)
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			return fmt.Errorf("%d validation issue(s)", len(issues))
		},
	}
}

// printValue writes scalars on one line and maps or lists as YAML.
func printValue(w io.Writer, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// parseValue types a command-line value the way YAML would: booleans,
// integers and floats are recognized, anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
