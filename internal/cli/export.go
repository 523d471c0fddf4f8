package cli

import (
	"errors"
	"fmt"
	"strings"

	"gigtrack-cli/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	var label string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all projects as CSV (UTF-8 with BOM)",
		Example: strings.TrimSpace(`
gigtrack export
gigtrack export --out ~/Desktop --label clients
gigtrack export --stdout > projects.csv
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if cmd.Flags().Changed("label") {
				ctrl.SetExportLabel(label)
			}

			if stdout {
				_, data, err := ctrl.Export()
				if err != nil {
					return exportErr(cmd, err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			path, err := ctrl.ExportTo(out)
			if err != nil {
				return exportErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": path, "projects": len(ctrl.Projects())},
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", ".", "Directory to write the file into")
	cmd.Flags().StringVar(&label, "label", export.DefaultLabel, "File name prefix (<label>_<date>.csv)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the CSV to stdout instead of a file")
	return cmd
}

// exportErr turns an empty collection into a notice rather than a failure.
func exportErr(cmd *cobra.Command, err error) error {
	if errors.Is(err, export.ErrEmpty) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to export: there are no projects yet.")
		return nil
	}
	return writeErr(cmd, err)
}
