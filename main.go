package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"resultflow/commontypes"
	"resultflow/config"
	"resultflow/system"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "resultflow",
		Short:        "Launcher result provider",
		Long:         "resultflow answers launcher queries with web searches, calculations and configured commands.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "path to the configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newServeCmd(opts), newQueryCmd(opts), newConfigCmd(opts))
	return root
}

// newLogger routes slog through charmbracelet/log. An empty or unknown level
// falls back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "resultflow",
	})
	return slog.New(handler)
}

func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger := newLogger(os.Stderr, level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve queries and activations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			a, err := newApp(cfg, opts.configPath, systemEffects(logger), system.LogWindow{Logger: logger}, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := config.Watch(ctx, opts.configPath, logger, a.apply); err != nil {
				logger.Warn("config hot reload unavailable", "error", err)
			}

			srv := newServer(a, cfg.Server.Timeout(), cfg.Server.RateLimit, cfg.Server.Burst, logger)
			return listenAndServe(ctx, srv.httpServer(cfg.Server.Listen), logger)
		},
	}
}

func listenAndServe(ctx context.Context, httpSrv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP receiver listening", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", httpSrv.Addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var activate int

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a single query and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, opts.configPath, systemEffects(logger), system.LogWindow{Logger: logger}, logger)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), a, args[0], activate, cmd.OutOrStdout(), cfg.Server.Timeout())
		},
	}
	cmd.Flags().IntVarP(&activate, "activate", "a", -1, "activate the result at this position")
	return cmd
}

func runQuery(ctx context.Context, a *app, text string, activate int, out io.Writer, timeout time.Duration) error {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	set := a.session.Query(queryCtx, text)
	if activate >= 0 {
		return a.session.Activate(ctx, set.Ref(activate))
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(commontypes.FromResultSet(set, a.icons))
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(opts.configPath, force, cmd.OutOrStdout())
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func initConfig(path string, force bool, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
