package view

import (
	"fmt"
	"strings"

	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/statusutil"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is the display currency when none is configured.
const DefaultCurrency = "EGP"

// Unspecified stands in for empty dates.
const Unspecified = "unspecified"

// LongDateFormat is the long-form display layout for dates.
const LongDateFormat = "January 2, 2006"

// ValidateCurrency reports whether code is an ISO 4217 code known to go-money.
func ValidateCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("unknown currency: %q", code)
	}
	return code, nil
}

// FormatMoney renders an amount with the currency's grapheme, grouping and
// fraction digits. It lays out the decimal string with go-money's formatter
// settings rather than going through int64 minor units, so sums of any size
// format correctly.
func FormatMoney(a model.Amount, code string) string {
	code, err := ValidateCurrency(code)
	if err != nil {
		code = DefaultCurrency
	}
	f := money.GetCurrency(code).Formatter()

	fixed := a.Decimal().Abs().StringFixed(int32(f.Fraction))
	whole, frac, _ := strings.Cut(fixed, ".")
	if f.Thousand != "" {
		whole = groupThousands(whole, f.Thousand)
	}
	if f.Fraction > 0 {
		whole += f.Decimal + frac
	}
	out := strings.Replace(f.Template, "1", whole, 1)
	return strings.Replace(out, "$", f.Grapheme, 1)
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate renders a raw YYYY-MM-DD value in long form. Empty values become
// Unspecified; values that are not dates are shown as typed.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unspecified
	}
	t, ok := statusutil.ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format(LongDateFormat)
}

// YesNo renders a delivered/paid flag the way the table and the export do.
func YesNo(v bool) string {
	if v {
		return "done"
	}
	return "not done"
}
