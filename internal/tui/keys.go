package tui

import "github.com/charmbracelet/bubbles/key"

// tableKeys are the bindings of the project table. The table component handles
// cursor movement itself; Up and Down are listed for the help line only.
type tableKeys struct {
	Up        key.Binding
	Down      key.Binding
	Search    key.Binding
	Clear     key.Binding
	New       key.Binding
	Edit      key.Binding
	Delivered key.Binding
	Paid      key.Binding
	Delete    key.Binding
	Export    key.Binding
	Summary   key.Binding
	Quit      key.Binding
}

func newTableKeys() tableKeys {
	return tableKeys{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delivered: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delivered")),
		Paid:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paid")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Export:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export csv")),
		Summary:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summary")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k tableKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.New, k.Edit, k.Delivered, k.Paid, k.Delete, k.Export, k.Summary, k.Quit}
}

func (k tableKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Search, k.Clear},
		{k.New, k.Edit, k.Delete},
		{k.Delivered, k.Paid},
		{k.Export, k.Summary, k.Quit},
	}
}

type formKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func newFormKeys() formKeys {
	return formKeys{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Cancel}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
