package cli

import (
	"strings"

	"gigtrack-cli/internal/statusutil"
	"gigtrack-cli/internal/store"
	"gigtrack-cli/internal/view"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persistent defaults (~/.gigtrack/config.json)",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": cfg,
				"meta": map[string]any{"path": path, "keys": store.ConfigKeys()},
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a config key (omit the value to clear it)",
		Example: strings.TrimSpace(`
gigtrack config set currency USD
gigtrack config set backend sqlite
gigtrack config set statusRule date-only
gigtrack config set redisUrl
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := validateConfigValue(key, value); err != nil {
				return writeErr(cmd, err)
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := cfg.Set(key, value); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}
}

// validateConfigValue rejects values that would fail on every later command.
func validateConfigValue(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var err error
	switch key {
	case "backend":
		_, err = store.ParseBackend(value)
	case "currency":
		_, err = view.ValidateCurrency(value)
	case "statusRule":
		_, err = statusutil.ParseRule(value)
	}
	return err
}
