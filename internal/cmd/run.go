package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/adaptui/internal/api"
	"github.com/Iron-Ham/adaptui/internal/config"
	"github.com/Iron-Ham/adaptui/internal/history"
	"github.com/Iron-Ham/adaptui/internal/logging"
	"github.com/Iron-Ham/adaptui/internal/tui/dashboard"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the adaptation scheduler against a simulated scene",
	Long: `Run one trigger per coordinator against a simulated scene until interrupted.

In global scope a single trigger optimizes every element together. In local
scope each element has its own coordinator and trigger. Applied layouts are
recorded to the history database and can be watched live in the dashboard
or through the HTTP API.

Editing the config file while running replaces the triggers with ones built
from the new trigger settings.

Examples:
  # Four elements, one global trigger, dashboard when attached to a terminal
  adaptui run

  # Eight elements, one asynchronous trigger each, with the HTTP API
  adaptui run --elements 8 --global=false --async --listen 127.0.0.1:8089

  # Start from layouts in a request file
  adaptui run --request layouts.yaml --tui=false`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("elements", 4, "Number of generated elements")
	runCmd.Flags().Bool("global", true, "Drive every element from one trigger")
	runCmd.Flags().Bool("async", false, "Spread optimization across frames")
	runCmd.Flags().Bool("tui", true, "Show the dashboard when attached to a terminal")
	runCmd.Flags().String("listen", "", "Serve the HTTP API on this address")
	runCmd.Flags().String("request", "", "YAML request file with the initial layouts")

	_ = viper.BindPFlag("coordinator.elements", runCmd.Flags().Lookup("elements"))
	_ = viper.BindPFlag("coordinator.global", runCmd.Flags().Lookup("global"))
	_ = viper.BindPFlag("trigger.run_asynchronous", runCmd.Flags().Lookup("async"))
	_ = viper.BindPFlag("tui.enabled", runCmd.Flags().Lookup("tui"))
	_ = viper.BindPFlag("coordinator.request_file", runCmd.Flags().Lookup("request"))
}

func runRun(cmd *cobra.Command, args []string) error {
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		viper.Set("api.enabled", true)
		viper.Set("api.listen", listen)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	useTUI := cfg.TUI.Enabled && isatty.IsTerminal(os.Stdout.Fd())
	// The dashboard owns the terminal; applies are only logged
	var out io.Writer = cmd.OutOrStdout()
	if useTUI {
		out = io.Discard
	}

	rt, err := newRuntime(cfg, out, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	var store history.Store
	if cfg.History.Enabled {
		path := cfg.History.ResolvePath()
		bolt, err := history.OpenBolt(path)
		if err != nil {
			return fmt.Errorf("failed to open history at %s: %w", path, err)
		}
		defer bolt.Close()
		store = bolt

		recorder := history.NewRecorder(store, rt.bus, logger)
		recorder.Start()
		defer recorder.Stop()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchConfig(rt, logger)
	rt.Start(ctx)

	var wg conc.WaitGroup
	defer wg.Wait()
	if cfg.API.Enabled {
		server := api.New(rt.group, store, logger)
		wg.Go(func() {
			if err := server.ListenAndServe(ctx, cfg.API.Listen); err != nil {
				logger.Error("api server failed", "addr", cfg.API.Listen, "error", err)
				cancel()
			}
		})
	}

	if useTUI {
		err = dashboard.New(rt.group, rt.bus, cfg.TUI.Refresh).Run(ctx)
		cancel()
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Running %d trigger(s) in %s mode. Press Ctrl+C to stop.\n",
			rt.group.Len(), rt.TriggerConfig().Mode())
		<-ctx.Done()
	}

	fmt.Fprint(cmd.OutOrStdout(), rt.Summary())
	return err
}

// watchConfig rebuilds the triggers whenever the config file changes.
// Invalid edits are logged and the running triggers are kept.
func watchConfig(rt *runtime, logger *logging.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		changed, err := rt.reconfigure(cfg.TriggerConfig())
		if err != nil {
			logger.Error("failed to apply config change", "file", e.Name, "error", err)
			return
		}
		if changed {
			logger.Info("config reloaded", "file", e.Name)
		}
	})
	viper.WatchConfig()
}
