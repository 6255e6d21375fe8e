package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/gateway"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
	"github.com/soyeahso/suite/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the suite server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			srvLog, closeLog, err := serverLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := store.Open(paths.DBPath(cfg.Store), srvLog)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			hookMgr := hooks.NewManager(srvLog)
			opts := []gateway.ServerOption{gateway.WithHooks(hookMgr)}
			if cfg.Server.Metrics {
				opts = append(opts, gateway.WithMetrics(metrics.New()))
			}

			srv, err := gateway.New(cfg, db, srvLog, opts...)
			if err != nil {
				return err
			}
			if c := srv.Agents().Collisions(); len(c) > 0 {
				srvLog.Warn().Int("count", len(c)).Msg("agent name collisions, later definitions kept")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = srv.Start(ctx)
			hookMgr.Wait()
			return err
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")
	return cmd
}

// serverLogger builds the logger described by the logging section: JSON
// or console output on stderr, optionally teed to a file.
func serverLogger(cfg config.LoggingConfig) (*logging.Logger, func(), error) {
	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}

	var w io.Writer
	if cfg.ConsoleStyle == "json" {
		w = os.Stderr
	}
	if cfg.File == "" {
		return logging.New(w, level), func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	if w == nil {
		w = logging.ConsoleWriter(os.Stderr)
	}
	return logging.New(io.MultiWriter(w, f), level), func() { f.Close() }, nil
}
