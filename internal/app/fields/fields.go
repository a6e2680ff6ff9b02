// Package fields validates raw form input per field role.
//
// Every validator either returns the accepted typed value or a *Rejection.
// Callers keep their previous value on rejection; nothing is shown to the user.
package fields

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-sql/civil"
)

// Role is the semantic purpose of an input field.
type Role int

const (
	RoleText Role = iota
	RoleMonths
	RoleYear
	RoleContribution
	RoleCheckbox
	RoleStartDate
	RoleEndDate
)

func (r Role) String() string {
	switch r {
	case RoleText:
		return "text"
	case RoleMonths:
		return "months"
	case RoleYear:
		return "year"
	case RoleContribution:
		return "contribution"
	case RoleCheckbox:
		return "checkbox"
	case RoleStartDate:
		return "start-date"
	case RoleEndDate:
		return "end-date"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ErrRejected matches every *Rejection via errors.Is.
var ErrRejected = errors.New("input rejected")

// Rejection reports why raw input was not accepted for a role.
type Rejection struct {
	Role   Role
	Input  string
	Reason string
}

func (e *Rejection) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: rejected %q: %s", e.Role, e.Input, e.Reason)
}

func (e *Rejection) Is(target error) bool { return target == ErrRejected }

var (
	monthsPattern       = regexp.MustCompile(`^\d+$`)
	yearPattern         = regexp.MustCompile(`^\d{1,4}$`)
	contributionPattern = regexp.MustCompile(`^\d*\.?\d*$`)
)

// RoleForLabel infers the role from a field label, matching German and English wording.
// Date labels are matched before year labels ("Startdatum" never contains "jahr",
// but "Herstellungsjahr" must not become a date).
func RoleForLabel(label string) Role {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "startdatum"), strings.Contains(l, "start date"):
		return RoleStartDate
	case strings.Contains(l, "enddatum"), strings.Contains(l, "end date"):
		return RoleEndDate
	case strings.Contains(l, "monate"), strings.Contains(l, "month"):
		return RoleMonths
	case strings.Contains(l, "jahr"), strings.Contains(l, "year"):
		return RoleYear
	case strings.Contains(l, "beitrag"), strings.Contains(l, "payment"), strings.Contains(l, "contribution"):
		return RoleContribution
	default:
		return RoleText
	}
}

// Months accepts one or more digits.
func Months(s string) (int, error) {
	if !monthsPattern.MatchString(s) {
		return 0, &Rejection{Role: RoleMonths, Input: s, Reason: "must be one or more digits"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &Rejection{Role: RoleMonths, Input: s, Reason: "out of range"}
	}
	return n, nil
}

// Year accepts one to four digits.
func Year(s string) (int, error) {
	if !yearPattern.MatchString(s) {
		return 0, &Rejection{Role: RoleYear, Input: s, Reason: "must be 1-4 digits"}
	}
	n, _ := strconv.Atoi(s)
	return n, nil
}

// Contribution accepts an optional integer part with an optional fractional part.
// The result must parse as a non-negative float, so "" and "." are rejected.
func Contribution(s string) (float64, error) {
	if !contributionPattern.MatchString(s) {
		return 0, &Rejection{Role: RoleContribution, Input: s, Reason: "must be digits with an optional decimal point"}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, &Rejection{Role: RoleContribution, Input: s, Reason: "not a non-negative number"}
	}
	return f, nil
}

// Toggle flips a checkbox value; any interaction is accepted.
func Toggle(current bool) bool { return !current }

// Text accepts any string unchanged.
func Text(s string) string { return s }

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil || !d.IsValid() {
		return civil.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// StartDate accepts raw as the new start date when it is on or before currentEnd,
// or when currentEnd is not a valid date yet.
func StartDate(raw string, currentEnd civil.Date) (civil.Date, error) {
	d, err := ParseDate(raw)
	if err != nil {
		return civil.Date{}, &Rejection{Role: RoleStartDate, Input: raw, Reason: "not a date"}
	}
	if currentEnd.IsValid() && d.After(currentEnd) {
		return civil.Date{}, &Rejection{Role: RoleStartDate, Input: raw, Reason: "start date after end date " + currentEnd.String()}
	}
	return d, nil
}

// EndDate accepts raw as the new end date when it is on or after currentStart,
// or when currentStart is not a valid date yet.
func EndDate(raw string, currentStart civil.Date) (civil.Date, error) {
	d, err := ParseDate(raw)
	if err != nil {
		return civil.Date{}, &Rejection{Role: RoleEndDate, Input: raw, Reason: "not a date"}
	}
	if currentStart.IsValid() && d.Before(currentStart) {
		return civil.Date{}, &Rejection{Role: RoleEndDate, Input: raw, Reason: "end date before start date " + currentStart.String()}
	}
	return d, nil
}
