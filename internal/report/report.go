// Package report summarizes the collection as Markdown.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/statusutil"
	"gigtrack-cli/internal/view"
)

// Summary is the aggregate view of the collection.
type Summary struct {
	Total  int                         `json:"total"`
	Counts map[statusutil.Category]int `json:"counts"`

	OwnTotal      model.Amount `json:"ownTotal"`
	AssigneeTotal model.Amount `json:"assigneeTotal"`
	// Net is OwnTotal minus AssigneeTotal and may be negative, so it is kept
	// as display text rather than an Amount.
	Net    string       `json:"net"`
	Unpaid model.Amount `json:"unpaid"`

	Overdue []view.Row `json:"overdue"`
}

// categories is the fixed display order.
var categories = []statusutil.Category{
	statusutil.CategoryActive,
	statusutil.CategoryOverdue,
	statusutil.CategoryCompleted,
	statusutil.CategoryDelivered,
}

var categoryTitles = map[statusutil.Category]string{
	statusutil.CategoryActive:    "Due soon",
	statusutil.CategoryOverdue:   "Overdue",
	statusutil.CategoryCompleted: "In progress",
	statusutil.CategoryDelivered: "Delivered",
}

func Summarize(projects []model.Project, opts view.Options) Summary {
	s := Summary{
		Total:  len(projects),
		Counts: make(map[statusutil.Category]int, len(categories)),
	}
	for _, c := range categories {
		s.Counts[c] = 0
	}
	for i, p := range projects {
		st := view.StatusOf(p, opts)
		s.Counts[st.Category]++
		s.OwnTotal = s.OwnTotal.Add(p.MyPayment)
		s.AssigneeTotal = s.AssigneeTotal.Add(p.AssignedPayment)
		if !p.Paid {
			s.Unpaid = s.Unpaid.Add(p.MyPayment)
		}
		if st.Category == statusutil.CategoryOverdue {
			s.Overdue = append(s.Overdue, view.NewRow(p, i, opts))
		}
	}
	s.Net = formatSigned(s.OwnTotal, s.AssigneeTotal, opts.Currency)
	return s
}

func formatSigned(own, assignee model.Amount, currency string) string {
	diff := own.Decimal().Sub(assignee.Decimal())
	if diff.IsNegative() {
		return "-" + view.FormatMoney(model.NewAmount(diff.Neg()), currency)
	}
	return view.FormatMoney(model.NewAmount(diff), currency)
}

// Markdown renders the summary as a Markdown document.
func Markdown(s Summary, opts view.Options) string {
	var buf bytes.Buffer
	writeLn := func(line string) {
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	writeLn("# Projects summary")
	writeLn("")
	if s.Total == 0 {
		writeLn("No projects yet.")
		return buf.String()
	}

	writeLn("| Status | Projects |")
	writeLn("|---|---:|")
	for _, c := range categories {
		writeLn(fmt.Sprintf("| %s | %d |", categoryTitles[c], s.Counts[c]))
	}
	writeLn(fmt.Sprintf("| **Total** | **%d** |", s.Total))
	writeLn("")

	writeLn("## Payments")
	writeLn("")
	writeLn("- Own payments: " + view.FormatMoney(s.OwnTotal, opts.Currency))
	writeLn("- Assignee payments: " + view.FormatMoney(s.AssigneeTotal, opts.Currency))
	writeLn("- Net: " + s.Net)
	writeLn("- Not yet paid: " + view.FormatMoney(s.Unpaid, opts.Currency))

	if len(s.Overdue) > 0 {
		writeLn("")
		writeLn("## Overdue")
		writeLn("")
		for _, r := range s.Overdue {
			writeLn(fmt.Sprintf("- **%s** (%s), due %s, %s",
				escape(r.Name), escape(r.AssignedTo), r.Deadline, r.Status.Label))
		}
	}
	return buf.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`|`, `\|`,
	`#`, `\#`,
)

func escape(s string) string { return mdEscaper.Replace(s) }
