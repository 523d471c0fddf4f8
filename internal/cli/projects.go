package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/tracker"

	"github.com/spf13/cobra"
)

type formFlags struct {
	name            string
	start           string
	deadline        string
	payment         string
	assignee        string
	assigneePayment string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Project name")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.payment, "payment", "", "Own payment")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Who the work is assigned to")
	cmd.Flags().StringVar(&f.assigneePayment, "assignee-payment", "", "Payment owed to the assignee")
}

// overlay copies only the flags the user set onto form.
func (f *formFlags) overlay(cmd *cobra.Command, form tracker.Form) tracker.Form {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("name", &form.Name, f.name)
	set("start", &form.StartDate, f.start)
	set("deadline", &form.Deadline, f.deadline)
	set("payment", &form.MyPayment, f.payment)
	set("assignee", &form.AssignedTo, f.assignee)
	set("assignee-payment", &form.AssignedPayment, f.assigneePayment)
	return form
}

func newAddCmd(app *App) *cobra.Command {
	var f formFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		Example: strings.TrimSpace(`
gigtrack add --name "Logo" --start 2024-01-02 --deadline 2024-01-12 --payment 1500 --assignee Ali --assignee-payment 300
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			_, pos, err := ctrl.Submit(cmd.Context(), f.overlay(cmd, tracker.Form{}))
			if err != nil {
				return writeErr(cmd, err)
			}
			row, err := ctrl.Row(pos)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": row})
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var f formFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a project (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			pos, err := lookup(ctrl, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			form, err := ctrl.BeginEdit(pos)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, pos, err = ctrl.Submit(cmd.Context(), f.overlay(cmd, form))
			if err != nil {
				ctrl.CancelEdit()
				return writeErr(cmd, err)
			}
			row, err := ctrl.Row(pos)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": row})
		},
	}
	f.register(cmd)
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects (optionally filtered)",
		Example: strings.TrimSpace(`
gigtrack list
gigtrack list --search ali
gigtrack list --search 2024-03
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			t := ctrl.View(search)
			return writeOut(cmd, app, map[string]any{
				"data": t.Rows,
				"meta": map[string]any{
					"query": t.Query,
					"shown": len(t.Rows),
					"total": t.Total,
					"empty": t.Empty,
				},
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive filter on name, assignee and dates")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			pos, err := lookup(ctrl, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			row, err := ctrl.Row(pos)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": row})
		},
	}
}

// newFlagCmd builds `delivered` and `paid`.
func newFlagCmd(app *App, name string) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   name + " <id>",
		Short: "Mark a project " + name + " (--off to clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := model.ParseFlag(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			pos, err := lookup(ctrl, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := ctrl.SetFlag(cmd.Context(), pos, flag, !off); err != nil {
				return writeErr(cmd, err)
			}
			row, err := ctrl.Row(pos)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": row})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Clear the flag instead of setting it")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project (asks for confirmation unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			pos, err := lookup(ctrl, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			confirmed := yes
			if !confirmed {
				row, err := ctrl.Row(pos)
				if err != nil {
					return writeErr(cmd, err)
				}
				confirmed = confirm(cmd, fmt.Sprintf("Delete project %q? [y/N] ", row.Name))
			}
			removed, err := ctrl.Delete(cmd.Context(), pos, confirmed)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": true, "id": removed.ID, "name": removed.Name},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

// confirm asks on stderr and reads one line from stdin. Only y/yes confirms.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func lookup(ctrl *tracker.Controller, raw string) (int, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return -1, fmt.Errorf("invalid project id: %q", raw)
	}
	pos := ctrl.IndexOf(id)
	if pos < 0 {
		return -1, errNotFound("project", raw)
	}
	return pos, nil
}
