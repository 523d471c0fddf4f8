// Package view turns the project collection into display models. Nothing here
// touches a UI toolkit; the web and TUI layers only bind these rows.
package view

import (
	"html/template"
	"strings"
	"time"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/statusutil"
)

type Options struct {
	Currency string
	Rule     statusutil.Rule
	// Today is the reference day for status badges; zero means time.Now().
	Today time.Time
}

func (o Options) today() time.Time {
	if o.Today.IsZero() {
		return time.Now()
	}
	return o.Today
}

// Row is the display model of one project.
type Row struct {
	// Position is the project's index in the full collection, never its index
	// in a filtered view. Callbacks must use it.
	Position int   `json:"position"`
	ID       int64 `json:"id"`

	Name         string        `json:"name"`
	NameHTML     template.HTML `json:"-"`
	AssignedTo   string        `json:"assignedTo"`
	AssigneeHTML template.HTML `json:"-"`

	StartDate       string `json:"startDate"`
	Deadline        string `json:"deadline"`
	MyPayment       string `json:"myPayment"`
	AssignedPayment string `json:"assignedPayment"`

	Delivered bool              `json:"delivered"`
	Paid      bool              `json:"paid"`
	Status    statusutil.Status `json:"status"`
}

type Table struct {
	Query string `json:"query,omitempty"`
	Rows  []Row  `json:"rows"`
	// Empty is set when there is nothing to show; the UI shows its
	// empty-state indicator instead of a table.
	Empty bool `json:"empty"`
	// Total is the size of the unfiltered collection.
	Total int `json:"total"`
}

// NormalizeQuery lowercases and trims a search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Filter returns the projects matching query, in collection order. Names and
// assignees match case-insensitively; dates match against their raw text.
// An empty query returns the whole collection.
func Filter(all []model.Project, query string) []model.Project {
	q := NormalizeQuery(query)
	if q == "" {
		return all
	}
	out := make([]model.Project, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.AssignedTo), q) ||
			strings.Contains(p.StartDate, q) ||
			strings.Contains(p.Deadline, q) {
			out = append(out, p)
		}
	}
	return out
}

// StatusOf classifies one project.
func StatusOf(p model.Project, opts Options) statusutil.Status {
	return statusutil.Classify(p.Deadline, p.Delivered, opts.today(), opts.Rule)
}

// NewRow builds the display model of p at the given collection position.
func NewRow(p model.Project, position int, opts Options) Row {
	return Row{
		Position:        position,
		ID:              p.ID,
		Name:            p.Name,
		NameHTML:        template.HTML(template.HTMLEscapeString(p.Name)),
		AssignedTo:      p.AssignedTo,
		AssigneeHTML:    template.HTML(template.HTMLEscapeString(p.AssignedTo)),
		StartDate:       FormatDate(p.StartDate),
		Deadline:        FormatDate(p.Deadline),
		MyPayment:       FormatMoney(p.MyPayment, opts.Currency),
		AssignedPayment: FormatMoney(p.AssignedPayment, opts.Currency),
		Delivered:       p.Delivered,
		Paid:            p.Paid,
		Status:          StatusOf(p, opts),
	}
}

// Build renders shown (a subsequence of all) into rows. Each row's Position is
// resolved by id against all.
func Build(all, shown []model.Project, opts Options) Table {
	pos := make(map[int64]int, len(all))
	for i, p := range all {
		if _, dup := pos[p.ID]; !dup {
			pos[p.ID] = i
		}
	}
	t := Table{Rows: make([]Row, 0, len(shown)), Total: len(all)}
	for _, p := range shown {
		i, ok := pos[p.ID]
		if !ok {
			continue
		}
		t.Rows = append(t.Rows, NewRow(p, i, opts))
	}
	t.Empty = len(t.Rows) == 0
	return t
}

// Search filters all by query and builds the resulting table.
func Search(all []model.Project, query string, opts Options) Table {
	t := Build(all, Filter(all, query), opts)
	t.Query = strings.TrimSpace(query)
	return t
}
