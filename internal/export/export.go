// Package export writes the project collection as spreadsheet-friendly CSV.
package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/view"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no projects to export")

// BOM makes spreadsheet software read the file as UTF-8.
const BOM = "\uFEFF"

// ContentType is the MIME type of the exported file.
const ContentType = "text/csv; charset=utf-8"

// DefaultLabel prefixes exported file names.
const DefaultLabel = "projects"

// Header is the fixed header row. The assignee payment is deliberately not exported.
var Header = []string{
	"Project",
	"Start date",
	"Deadline",
	"Own payment",
	"Assignee",
	"Delivered",
	"Paid",
	"Status",
}

// CSV renders the full collection, in collection order, prefixed with a BOM.
func CSV(projects []model.Project, opts view.Options) ([]byte, error) {
	if len(projects) == 0 {
		return nil, ErrEmpty
	}
	var b bytes.Buffer
	b.WriteString(BOM)
	writeRow(&b, Header)
	for _, p := range projects {
		b.WriteByte('\n')
		writeRow(&b, []string{
			p.Name,
			view.FormatDate(p.StartDate),
			view.FormatDate(p.Deadline),
			view.FormatMoney(p.MyPayment, opts.Currency),
			p.AssignedTo,
			view.YesNo(p.Delivered),
			view.YesNo(p.Paid),
			view.StatusOf(p, opts).Label,
		})
	}
	return b.Bytes(), nil
}

func writeRow(b *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
}

// Escape quotes a value when it contains a comma, a quote or a newline,
// doubling any embedded quotes.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FileName returns <label>_<YYYY-MM-DD>.csv for the day of now.
func FileName(label string, now time.Time) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel
	}
	return label + "_" + now.Format(model.DateFormat) + ".csv"
}

// WriteFile exports into dir and returns the written path.
func WriteFile(dir, label string, projects []model.Project, opts view.Options, now time.Time) (string, error) {
	b, err := CSV(projects, opts)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(label, now))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
