package cli

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all projects with a JSON dump (use - for stdin)",
		Long: strings.TrimSpace(`
Replace the whole collection with a JSON array of projects, for example the
value of the browser's "projects" localStorage key. Blank assignees become
"unspecified" and duplicate ids are renumbered.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			if n := len(ctrl.Projects()); n > 0 && !yes && args[0] != "-" {
				if !confirm(cmd, "Replace the existing "+pluralProjects(n)+"? [y/N] ") {
					return writeOut(cmd, app, map[string]any{"data": map[string]any{"imported": 0, "aborted": true}})
				}
			}
			n, err := ctrl.Import(cmd.Context(), raw)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"imported": n}})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace without asking")
	return cmd
}

func pluralProjects(n int) string {
	if n == 1 {
		return "1 project"
	}
	return strconv.Itoa(n) + " projects"
}
