package tracker

import (
	"strings"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/statusutil"
)

// Form is the raw text of the project form, exactly as a user typed it.
type Form struct {
	Name            string `json:"name"`
	StartDate       string `json:"startDate"`
	Deadline        string `json:"deadline"`
	MyPayment       string `json:"myPayment"`
	AssignedTo      string `json:"assignedTo"`
	AssignedPayment string `json:"assignedPayment"`
}

// FormFromProject pre-fills the form for editing p.
func FormFromProject(p model.Project) Form {
	return Form{
		Name:            p.Name,
		StartDate:       p.StartDate,
		Deadline:        p.Deadline,
		MyPayment:       p.MyPayment.String(),
		AssignedTo:      p.AssignedTo,
		AssignedPayment: p.AssignedPayment.String(),
	}
}

// apply copies the coerced form fields onto p. Flags, id and creation time
// are left alone.
func (f Form) apply(p *model.Project) {
	p.Name = strings.TrimSpace(f.Name)
	p.StartDate = normalizeDate(f.StartDate)
	p.Deadline = normalizeDate(f.Deadline)
	p.MyPayment = model.ParseAmount(f.MyPayment)
	p.AssignedTo = strings.TrimSpace(f.AssignedTo)
	if p.AssignedTo == "" {
		p.AssignedTo = model.Unassigned
	}
	p.AssignedPayment = model.ParseAmount(f.AssignedPayment)
}

// normalizeDate canonicalizes parseable dates to YYYY-MM-DD and keeps
// anything else as typed.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if t, ok := statusutil.ParseDate(s); ok {
		return t.Format(model.DateFormat)
	}
	return s
}
