package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gigtrack-cli/internal/format"
	"gigtrack-cli/internal/statusutil"
	"gigtrack-cli/internal/store"
	"gigtrack-cli/internal/tracker"
	"gigtrack-cli/internal/tui"
	"gigtrack-cli/internal/view"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Backend    string
	RedisURL   string
	Slot       string
	PrettyJSON bool
	Format     string
	Currency   string
	StatusRule string
	LogLevel   string

	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "gigtrack",
		Short:        "Freelance project tracker (CLI + TUI + web)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  gigtrack

  # Add a project
  gigtrack add --name "Logo redesign" --deadline 2024-03-01 --payment 1500

  # Search and export
  gigtrack list --search ali
  gigtrack export --out ~/Desktop
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := format.Validate(app.Format)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Format = f
		app.log = newLogger(cmd.ErrOrStderr(), app.LogLevel)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("GIGTRACK_DIR", ""), "Data directory for the file and sqlite backends (default ~/.gigtrack/data)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("GIGTRACK_BACKEND", ""), "Storage backend (file|sqlite|redis)")
	cmd.PersistentFlags().StringVar(&app.RedisURL, "redis-url", envOr("GIGTRACK_REDIS_URL", ""), "Redis URL for the redis backend (redis://host:6379/0)")
	cmd.PersistentFlags().StringVar(&app.Slot, "slot", envOr("GIGTRACK_SLOT", ""), "Slot key the projects are stored under (default \"projects\")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("GIGTRACK_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.Currency, "currency", envOr("GIGTRACK_CURRENCY", ""), "ISO 4217 display currency (default EGP)")
	cmd.PersistentFlags().StringVar(&app.StatusRule, "status-rule", envOr("GIGTRACK_STATUS_RULE", ""), "Status rule (delivered-first|date-only)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("GIGTRACK_LOG_LEVEL", "warn"), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newFlagCmd(app, "delivered"))
	cmd.AddCommand(newFlagCmd(app, "paid"))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newSummaryCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctrl, closeFn, err := loadController(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeFn()
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return tui.Run(ctrl, tui.Options{ExportDir: wd})
}

// settings is the resolved configuration: flags and environment first, then
// config.json, then defaults.
type settings struct {
	slot        store.SlotConfig
	slotKey     string
	currency    string
	rule        statusutil.Rule
	exportLabel string
}

func resolveSettings(app *App) (settings, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return settings{}, err
	}
	backend, err := store.ParseBackend(firstNonEmpty(app.Backend, cfg.Backend))
	if err != nil {
		return settings{}, err
	}
	dir := firstNonEmpty(app.Dir, cfg.DataDir)
	if dir == "" && backend != store.BackendRedis {
		if dir, err = store.DefaultDataDir(); err != nil {
			return settings{}, err
		}
	}
	currency, err := view.ValidateCurrency(firstNonEmpty(app.Currency, cfg.Currency))
	if err != nil {
		return settings{}, err
	}
	rule, err := statusutil.ParseRule(firstNonEmpty(app.StatusRule, cfg.StatusRule))
	if err != nil {
		return settings{}, err
	}
	return settings{
		slot: store.SlotConfig{
			Backend:     backend,
			Dir:         dir,
			RedisURL:    firstNonEmpty(app.RedisURL, cfg.RedisURL),
			RedisPrefix: cfg.RedisPrefix,
		},
		slotKey:     firstNonEmpty(app.Slot, cfg.Slot),
		currency:    currency,
		rule:        rule,
		exportLabel: cfg.ExportLabel,
	}, nil
}

// loadController opens the configured slot, loads the collection and returns
// a controller over it. The returned func closes the slot.
func loadController(ctx context.Context, app *App) (*tracker.Controller, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := resolveSettings(app)
	if err != nil {
		return nil, nil, err
	}
	slot, err := store.OpenSlot(ctx, s.slot)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(slot, s.slotKey, app.logger())
	if err := st.Load(ctx); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	app.logger().Debug("store loaded", "backend", s.slot.Backend, "slot", st.Key(), "projects", st.Len())

	ctrl := tracker.New(st, tracker.Config{
		Currency:    s.currency,
		Rule:        s.rule,
		ExportLabel: s.exportLabel,
		Logger:      app.logger(),
	})
	return ctrl, func() { _ = st.Close() }, nil
}

func (app *App) logger() *slog.Logger {
	if app.log == nil {
		app.log = newLogger(os.Stderr, app.LogLevel)
	}
	return app.log
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
