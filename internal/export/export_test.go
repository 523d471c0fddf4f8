package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = view.Options{Currency: "USD", Today: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}

func TestCSV_HeaderBOMAndRows(t *testing.T) {
	ps := []model.Project{
		{ID: 1, Name: "Logo, v2", StartDate: "2024-01-01", Deadline: "2024-01-12", MyPayment: model.ParseAmount("1500"), AssignedTo: "Sara", AssignedPayment: model.ParseAmount("300"), Paid: true},
		{ID: 2, Name: `Say "hi"`, AssignedTo: model.Unassigned, Delivered: true},
	}
	b, err := CSV(ps, opts)
	require.NoError(t, err)

	s := string(b)
	require.True(t, strings.HasPrefix(s, BOM), "missing BOM")
	lines := strings.Split(strings.TrimPrefix(s, BOM), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Project,Start date,Deadline,Own payment,Assignee,Delivered,Paid,Status", lines[0])
	assert.Equal(t, `"Logo, v2","January 1, 2024","January 12, 2024","$1,500.00",Sara,not done,done,2 days left`, lines[1])
	assert.Equal(t, `"Say ""hi""",unspecified,unspecified,$0.00,unspecified,done,not done,done`, lines[2])
	assert.NotContains(t, s, "300", "assignee payment must not be exported")
}

func TestCSV_EmptyCollection(t *testing.T) {
	_, err := CSV(nil, opts)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "plain", Escape("plain"))
	assert.Equal(t, `"a,b"`, Escape("a,b"))
	assert.Equal(t, "\"two\nlines\"", Escape("two\nlines"))
	assert.Equal(t, `"5"" screen"`, Escape(`5" screen`))
	assert.Equal(t, "", Escape(""))
	// Only comma, quote and newline trigger quoting; RFC 4180 writers would
	// also quote these.
	assert.Equal(t, " leading space", Escape(" leading space"))
	assert.Equal(t, "carriage\rreturn", Escape("carriage\rreturn"))
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 7, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "projects_2024-03-07.csv", FileName("", now))
	assert.Equal(t, "clients_2024-03-07.csv", FileName(" clients ", now))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	path, err := WriteFile(dir, "", []model.Project{{ID: 1, Name: "A"}}, opts, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "projects_2024-01-10.csv"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), BOM))

	_, err = WriteFile(dir, "", nil, opts, now)
	assert.ErrorIs(t, err, ErrEmpty)
}
