package cli

import (
	"fmt"

	"gigtrack-cli/internal/report"
	"gigtrack-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var raw bool
	var data bool
	var width int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals per status and payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			opts := ctrl.Options()
			s := report.Summarize(ctrl.Projects(), opts)
			if data {
				return writeOut(cmd, app, map[string]any{"data": s})
			}
			md := report.Markdown(s, opts)
			if !raw {
				md = tui.RenderMarkdown(md, width)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown source instead of rendering it")
	cmd.Flags().BoolVar(&data, "data", false, "Print the totals in --format instead of a report")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for the rendered report")
	return cmd
}
