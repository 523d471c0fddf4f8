package report

import (
	"testing"
	"time"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/statusutil"
	"gigtrack-cli/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts() view.Options {
	return view.Options{Currency: "USD", Today: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
}

func sample() []model.Project {
	return []model.Project{
		{ID: 1, Name: "Logo", Deadline: "2024-01-12", MyPayment: model.AmountFromInt(1000), AssignedTo: "Ali", AssignedPayment: model.AmountFromInt(200)},
		{ID: 2, Name: "Site_v2", Deadline: "2024-01-05", MyPayment: model.AmountFromInt(500), AssignedTo: "Mona", Paid: true},
		{ID: 3, Name: "Poster", Deadline: "2024-01-01", MyPayment: model.AmountFromInt(300), AssignedTo: model.Unassigned, Delivered: true},
		{ID: 4, Name: "Banner", Deadline: "", AssignedTo: model.Unassigned},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), opts())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Counts[statusutil.CategoryActive])
	assert.Equal(t, 1, s.Counts[statusutil.CategoryOverdue])
	assert.Equal(t, 1, s.Counts[statusutil.CategoryDelivered])
	assert.Equal(t, 1, s.Counts[statusutil.CategoryCompleted])

	assert.Equal(t, "1800", s.OwnTotal.String())
	assert.Equal(t, "200", s.AssigneeTotal.String())
	assert.Equal(t, "1300", s.Unpaid.String())
	assert.Equal(t, "$1,600.00", s.Net)

	require.Len(t, s.Overdue, 1)
	assert.Equal(t, "Site_v2", s.Overdue[0].Name)
	assert.Equal(t, 1, s.Overdue[0].Position)
}

func TestSummarize_NegativeNet(t *testing.T) {
	ps := []model.Project{{ID: 1, Name: "A", MyPayment: model.AmountFromInt(10), AssignedPayment: model.AmountFromInt(25)}}
	s := Summarize(ps, opts())
	assert.Equal(t, "-$15.00", s.Net)
}

func TestMarkdown(t *testing.T) {
	o := opts()
	md := Markdown(Summarize(sample(), o), o)

	assert.Contains(t, md, "# Projects summary")
	assert.Contains(t, md, "| Overdue | 1 |")
	assert.Contains(t, md, "| **Total** | **4** |")
	assert.Contains(t, md, "- Own payments: $1,800.00")
	assert.Contains(t, md, "- Not yet paid: $1,300.00")
	assert.Contains(t, md, "## Overdue")
	assert.Contains(t, md, `**Site\_v2** (Mona), due January 5, 2024, overdue`)
}

func TestMarkdown_Empty(t *testing.T) {
	o := opts()
	md := Markdown(Summarize(nil, o), o)
	assert.Contains(t, md, "No projects yet.")
	assert.NotContains(t, md, "## Payments")
}
