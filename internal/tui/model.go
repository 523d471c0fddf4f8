package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gigtrack-cli/internal/export"
	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/report"
	"gigtrack-cli/internal/tracker"
	"gigtrack-cli/internal/view"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type mode int

const (
	modeTable mode = iota
	modeSearch
	modeForm
	modeConfirm
	modeSummary
)

const (
	fieldName = iota
	fieldStart
	fieldDeadline
	fieldPayment
	fieldAssignee
	fieldAssigneePayment
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Project name",
	"Start date",
	"Deadline",
	"Own payment",
	"Assigned to",
	"Assignee payment",
}

var fieldPlaceholders = [fieldCount]string{
	"required",
	"YYYY-MM-DD",
	"YYYY-MM-DD",
	"0",
	"unspecified",
	"0",
}

type appModel struct {
	ctx  context.Context
	ctrl *tracker.Controller
	opts Options

	width  int
	height int
	mode   mode

	table  table.Model
	rows   []view.Row
	total  int
	search textinput.Model

	inputs [fieldCount]textinput.Model
	focus  int

	pending      view.Row
	confirmFocus confirmFocus

	keys     tableKeys
	formKeys formKeys
	help     help.Model

	notice string
	errMsg string
}

func newModel(ctrl *tracker.Controller, opts Options) appModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search name, assignee or date"
	search.CharLimit = 120

	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = fieldPlaceholders[i]
		in.CharLimit = 200
		inputs[i] = in
	}

	t := table.New(
		table.WithColumns(columnsFor(0)),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true)
	st.Selected = st.Selected.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg)
	t.SetStyles(st)

	m := appModel{
		ctx:      context.Background(),
		ctrl:     ctrl,
		opts:     opts,
		table:    t,
		search:   search,
		inputs:   inputs,
		keys:     newTableKeys(),
		formKeys: newFormKeys(),
		help:     help.New(),
	}
	m.refresh()
	return m
}

const (
	dateColW   = 18
	moneyColW  = 14
	personColW = 14
	flagColW   = 9
	statusColW = 12
	minNameW   = 14
)

// columnsFor sizes the name column to the terminal width; the rest are fixed.
func columnsFor(width int) []table.Column {
	fixed := 2*dateColW + 2*moneyColW + personColW + 2*flagColW + statusColW
	const padding = 9 * 2
	nameW := width - fixed - padding
	if nameW < minNameW {
		nameW = minNameW + 10
		if width > 0 {
			nameW = minNameW
		}
	}
	return []table.Column{
		{Title: "Project", Width: nameW},
		{Title: "Start", Width: dateColW},
		{Title: "Deadline", Width: dateColW},
		{Title: "Own payment", Width: moneyColW},
		{Title: "Assigned to", Width: personColW},
		{Title: "Assignee pay", Width: moneyColW},
		{Title: "Delivered", Width: flagColW},
		{Title: "Paid", Width: flagColW},
		{Title: "Status", Width: statusColW},
	}
}

// truncate flattens s to one line and cuts it to w cells.
func truncate(s string, w int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if w <= 0 {
		return ""
	}
	return xansi.Truncate(s, w, "…")
}

// refresh rebuilds the visible rows from the controller and the search box.
func (m *appModel) refresh() {
	t := m.ctrl.View(m.search.Value())
	m.rows = t.Rows
	m.total = t.Total

	cols := m.table.Columns()
	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, table.Row{
			truncate(r.Name, cols[0].Width),
			r.StartDate,
			r.Deadline,
			r.MyPayment,
			truncate(r.AssignedTo, cols[4].Width),
			r.AssignedPayment,
			view.YesNo(r.Delivered),
			view.YesNo(r.Paid),
			r.Status.Label,
		})
	}
	m.table.SetRows(rows)
	switch c := m.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		m.table.SetCursor(0)
	case c >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

// selected returns the row under the cursor. Its Position indexes the full
// collection, not the filtered table.
func (m appModel) selected() (view.Row, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return view.Row{}, false
	}
	return m.rows[c], true
}

func (m *appModel) setNotice(format string, args ...any) {
	m.notice = fmt.Sprintf(format, args...)
	m.errMsg = ""
}

func (m *appModel) setErr(err error) {
	m.errMsg = err.Error()
	m.notice = ""
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columnsFor(msg.Width))
		m.table.SetWidth(msg.Width)
		h := msg.Height - 7
		if h < 4 {
			h = 4
		}
		m.table.SetHeight(h)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeSummary:
			switch msg.String() {
			case "esc", "q", "s", "enter":
				m.mode = modeTable
			}
			return m, nil
		default:
			return m.updateTable(msg)
		}
	}
	return m, nil
}

func (m appModel) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.table.Blur()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.ctrl.CancelEdit()
		cmd := m.openForm(tracker.Form{})
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		f, err := m.ctrl.BeginEdit(row.Position)
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		cmd := m.openForm(f)
		return m, cmd
	case key.Matches(msg, m.keys.Delivered, m.keys.Paid):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		flag := model.FlagDelivered
		if key.Matches(msg, m.keys.Paid) {
			flag = model.FlagPaid
		}
		p, err := m.ctrl.Toggle(m.ctx, row.Position, flag)
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		m.refresh()
		state := p.Delivered
		if flag == model.FlagPaid {
			state = p.Paid
		}
		m.setNotice("%s: %s %s", p.Name, flag, view.YesNo(state))
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pending = row
		m.confirmFocus = confirmFocusCancel
		m.mode = modeConfirm
		return m, nil
	case key.Matches(msg, m.keys.Export):
		path, err := m.ctrl.ExportTo(m.opts.ExportDir)
		if errors.Is(err, export.ErrEmpty) {
			m.setNotice("There are no projects to export yet.")
			return m, nil
		}
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		m.setNotice("Exported to %s", path)
		return m, nil
	case key.Matches(msg, m.keys.Summary):
		m.mode = modeSummary
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		fallthrough
	case "enter":
		m.search.Blur()
		m.table.Focus()
		m.mode = modeTable
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return m, cmd
}

func (m *appModel) openForm(f tracker.Form) tea.Cmd {
	values := [fieldCount]string{f.Name, f.StartDate, f.Deadline, f.MyPayment, f.AssignedTo, f.AssignedPayment}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].CursorEnd()
		m.inputs[i].Blur()
	}
	m.focus = fieldName
	m.mode = modeForm
	m.table.Blur()
	return m.inputs[fieldName].Focus()
}

func (m appModel) formValue() tracker.Form {
	return tracker.Form{
		Name:            m.inputs[fieldName].Value(),
		StartDate:       m.inputs[fieldStart].Value(),
		Deadline:        m.inputs[fieldDeadline].Value(),
		MyPayment:       m.inputs[fieldPayment].Value(),
		AssignedTo:      m.inputs[fieldAssignee].Value(),
		AssignedPayment: m.inputs[fieldAssigneePayment].Value(),
	}
}

func (m *appModel) closeForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.mode = modeTable
	m.table.Focus()
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		m.ctrl.CancelEdit()
		m.closeForm()
		m.setNotice("Cancelled.")
		return m, nil
	case key.Matches(msg, m.formKeys.Next, m.formKeys.Prev):
		m.inputs[m.focus].Blur()
		if key.Matches(msg, m.formKeys.Prev) {
			m.focus = (m.focus + fieldCount - 1) % fieldCount
		} else {
			m.focus = (m.focus + 1) % fieldCount
		}
		cmd := m.inputs[m.focus].Focus()
		return m, cmd
	case key.Matches(msg, m.formKeys.Submit):
		_, editing := m.ctrl.Editing()
		p, pos, err := m.ctrl.Submit(m.ctx, m.formValue())
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		m.closeForm()
		m.refresh()
		m.selectPosition(pos)
		if editing {
			m.setNotice("Updated %s.", p.Name)
		} else {
			m.setNotice("Added %s.", p.Name)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// selectPosition moves the cursor to the row showing collection position pos,
// when it is visible.
func (m *appModel) selectPosition(pos int) {
	for i, r := range m.rows {
		if r.Position == pos {
			m.table.SetCursor(i)
			return
		}
	}
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirmed := false
	switch msg.String() {
	case "esc", "n", "q":
		m.mode = modeTable
		m.setNotice("Kept %s.", m.pending.Name)
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusCancel {
			m.confirmFocus = confirmFocusConfirm
		} else {
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil
	case "y":
		confirmed = true
	case "enter":
		confirmed = m.confirmFocus == confirmFocusConfirm
	default:
		return m, nil
	}

	m.mode = modeTable
	if !confirmed {
		m.setNotice("Kept %s.", m.pending.Name)
		return m, nil
	}
	removed, err := m.ctrl.Delete(m.ctx, m.pending.Position, true)
	if err != nil {
		m.setErr(err)
		return m, nil
	}
	m.refresh()
	m.setNotice("Deleted %s.", removed.Name)
	return m, nil
}

func (m appModel) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm()
	case modeConfirm:
		body := fmt.Sprintf("Delete project %q?", m.pending.Name)
		modal := renderConfirmModal(m.width, "Delete project", body, "Delete", "Cancel", m.confirmFocus)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
		}
		return modal
	case modeSummary:
		return m.viewSummary()
	}
	return m.viewTable()
}

func (m appModel) viewTable() string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("gigtrack"))
	b.WriteString(styleMuted().Render(fmt.Sprintf("  %d of %d projects", len(m.rows), m.total)))
	b.WriteString("\n")
	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		msg := "No projects yet. Press n to add one."
		if m.search.Value() != "" {
			msg = "No projects match the search."
		}
		b.WriteString("\n" + styleMuted().Render(msg) + "\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if row, ok := m.selected(); ok {
			detail := fmt.Sprintf("%s · %s · %s ", row.Name, row.AssignedTo, row.Deadline)
			b.WriteString(truncate(detail, m.lineWidth()-statusColW) + renderBadge(row.Status))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) viewForm() string {
	var b strings.Builder
	title := "New project"
	if _, editing := m.ctrl.Editing(); editing {
		title = "Edit project"
	}
	b.WriteString(styleTitle().Render(title))
	b.WriteString("\n\n")
	label := lipgloss.NewStyle().Width(18)
	for i := range m.inputs {
		l := fieldLabels[i]
		if i == m.focus {
			l = lipgloss.NewStyle().Bold(true).Render(l)
		}
		b.WriteString(label.Render(l))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.formKeys))
	return b.String()
}

func (m appModel) viewSummary() string {
	opts := m.ctrl.Options()
	md := report.Markdown(report.Summarize(m.ctrl.Projects(), opts), opts)
	w := m.width
	if w <= 0 {
		w = 80
	}
	return RenderMarkdown(md, w) + "\n" + styleMuted().Render("esc: back")
}

func (m appModel) statusLine() string {
	switch {
	case m.errMsg != "":
		return styleError().Render(truncate(m.errMsg, m.lineWidth()))
	case m.notice != "":
		return styleNotice().Render(truncate(m.notice, m.lineWidth()))
	}
	return ""
}

func (m appModel) lineWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}
