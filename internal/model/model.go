package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unassigned is stored as the assignee when the form leaves it blank.
const Unassigned = "unspecified"

// DateFormat is the raw layout of StartDate and Deadline.
const DateFormat = "2006-01-02"

type Project struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	StartDate       string    `json:"startDate"`
	Deadline        string    `json:"deadline"`
	MyPayment       Amount    `json:"myPayment"`
	AssignedTo      string    `json:"assignedTo"`
	AssignedPayment Amount    `json:"assignedPayment"`
	Delivered       bool      `json:"isDelivered"`
	Paid            bool      `json:"isPaid"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Flag names one of the boolean fields of a Project.
type Flag string

const (
	FlagDelivered Flag = "delivered"
	FlagPaid      Flag = "paid"
)

func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delivered", "isdelivered":
		return FlagDelivered, nil
	case "paid", "ispaid":
		return FlagPaid, nil
	default:
		return "", fmt.Errorf("unknown flag: %q (expected delivered|paid)", s)
	}
}

// Set assigns the named flag.
func (p *Project) Set(f Flag, v bool) error {
	switch f {
	case FlagDelivered:
		p.Delivered = v
	case FlagPaid:
		p.Paid = v
	default:
		return fmt.Errorf("unknown flag: %q", string(f))
	}
	return nil
}

// Amount is a non-negative decimal that persists as a bare JSON number.
type Amount struct {
	d decimal.Decimal
}

// Parsed and decoded amounts keep at most MaxAmountDigits integer digits and
// AmountPlaces fraction digits. Larger values are coerced to zero, like
// non-numeric input.
const (
	MaxAmountDigits = 15
	AmountPlaces    = 8
)

func NewAmount(d decimal.Decimal) Amount {
	if d.IsNegative() {
		return Amount{}
	}
	return Amount{d: d}
}

// boundedAmount checks magnitude from the coefficient's digit count and the
// exponent, so huge exponents are rejected without expanding them.
func boundedAmount(d decimal.Decimal) Amount {
	if d.Sign() <= 0 {
		return Amount{}
	}
	mag := int64(len(d.Coefficient().Text(10))) + int64(d.Exponent())
	if mag > MaxAmountDigits || mag < -AmountPlaces {
		return Amount{}
	}
	if d.Exponent() < -AmountPlaces {
		d = d.Round(AmountPlaces)
	}
	return Amount{d: d}
}

func AmountFromInt(v int64) Amount { return NewAmount(decimal.NewFromInt(v)) }

func AmountFromFloat(v float64) Amount { return NewAmount(decimal.NewFromFloat(v)) }

var amountPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount coerces form input into an Amount. Like a browser's parseFloat it
// reads the longest numeric prefix; anything without one, negative or out of
// range is zero.
func ParseAmount(s string) Amount {
	m := amountPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return Amount{}
	}
	return boundedAmount(d)
}

func (a Amount) Decimal() decimal.Decimal { return a.d }
func (a Amount) IsZero() bool             { return a.d.IsZero() }
func (a Amount) Equal(b Amount) bool      { return a.d.Equal(b.d) }
func (a Amount) Add(b Amount) Amount      { return Amount{d: a.d.Add(b.d)} }
func (a Amount) String() string           { return a.d.String() }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = boundedAmount(d)
	return nil
}
