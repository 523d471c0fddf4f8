package statusutil

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryDelivered Category = "delivered"
	CategoryOverdue   Category = "overdue"
	CategoryActive    Category = "active"
	// CategoryCompleted is what the badge styles call "in progress".
	CategoryCompleted Category = "completed"
)

type Status struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
}

// Rule selects how the delivered flag interacts with the deadline.
type Rule string

const (
	// RuleDeliveredFirst reports every delivered project as done.
	RuleDeliveredFirst Rule = "delivered-first"
	// RuleDateOnly ignores the delivered flag and classifies by deadline alone.
	RuleDateOnly Rule = "date-only"
)

// DueSoonDays is the window, in days, in which a deadline counts down.
const DueSoonDays = 3

// Permissive read layout (allows single-digit month/day).
const readDateFormat = "2006-1-2"

func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RuleDeliveredFirst):
		return RuleDeliveredFirst, nil
	case string(RuleDateOnly):
		return RuleDateOnly, nil
	default:
		return "", fmt.Errorf("invalid status rule: %q (expected delivered-first|date-only)", s)
	}
}

// ParseDate parses a raw YYYY-MM-DD value into midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(readDateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Day strips the time of day from t, keeping its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of calendar days from today to deadline.
// ok is false when the deadline is empty or unparseable.
func DaysUntil(deadline string, today time.Time) (days int, ok bool) {
	dl, ok := ParseDate(deadline)
	if !ok {
		return 0, false
	}
	return int(dl.Sub(Day(today)).Hours() / 24), true
}

// Classify derives the status badge for a project. It is a pure function of
// its arguments.
func Classify(deadline string, delivered bool, today time.Time, rule Rule) Status {
	if delivered && rule != RuleDateOnly {
		return Status{Category: CategoryDelivered, Label: "done"}
	}

	days, ok := DaysUntil(deadline, today)
	switch {
	case !ok:
		// Unknown deadlines never count down.
		return Status{Category: CategoryCompleted, Label: "in progress"}
	case days < 0:
		return Status{Category: CategoryOverdue, Label: "overdue"}
	case days == 0:
		return Status{Category: CategoryActive, Label: "today"}
	case days == 1:
		return Status{Category: CategoryActive, Label: "1 day left"}
	case days <= DueSoonDays:
		return Status{Category: CategoryActive, Label: fmt.Sprintf("%d days left", days)}
	default:
		return Status{Category: CategoryCompleted, Label: "in progress"}
	}
}
