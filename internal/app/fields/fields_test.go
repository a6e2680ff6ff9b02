package fields

import (
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"testing"

	"github.com/golang-sql/civil"
)

func TestMonths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{"007", 7, true},
		{"", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"12a", 0, false},
		{" 12", 0, false},
	}
	for _, tc := range cases {
		got, err := Months(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("Months(%q) err=%v, want ok=%v", tc.in, err, tc.ok)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("Months(%q)=%d want %d", tc.in, got, tc.want)
		}
		if !tc.ok && !errors.Is(err, ErrRejected) {
			t.Fatalf("Months(%q) err=%v does not match ErrRejected", tc.in, err)
		}
	}
}

func TestYear(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0", "1900", "2024", "9999", "07"} {
		if _, err := Year(in); err != nil {
			t.Fatalf("Year(%q) err=%v", in, err)
		}
	}
	for _, in := range []string{"", "12345", "-1", "20.5", "abcd"} {
		if _, err := Year(in); err == nil {
			t.Fatalf("Year(%q) expected rejection", in)
		}
	}
}

func TestContribution(t *testing.T) {
	t.Parallel()

	accept := map[string]float64{"0": 0, "12.50": 12.5, ".5": 0.5, "5.": 5, "100": 100}
	for in, want := range accept {
		got, err := Contribution(in)
		if err != nil || got != want {
			t.Fatalf("Contribution(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", ".", "-1", "1,5", "1.2.3", "1e3"} {
		if _, err := Contribution(in); err == nil {
			t.Fatalf("Contribution(%q) expected rejection", in)
		}
	}
}

// The validators must agree with their documented patterns on arbitrary input.
func TestValidators_MatchPatterns(t *testing.T) {
	t.Parallel()

	const alphabet = "0123456789.-a "
	months := regexp.MustCompile(`^\d+$`)
	year := regexp.MustCompile(`^\d{1,4}$`)
	contribution := regexp.MustCompile(`^\d*\.?\d*$`)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		n := rng.Intn(7)
		b := make([]byte, n)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		s := string(b)

		if _, err := Months(s); (err == nil) != months.MatchString(s) {
			t.Fatalf("Months(%q) err=%v disagrees with pattern", s, err)
		}
		if _, err := Year(s); (err == nil) != year.MatchString(s) {
			t.Fatalf("Year(%q) err=%v disagrees with pattern", s, err)
		}
		_, perr := strconv.ParseFloat(s, 64)
		wantContribution := contribution.MatchString(s) && perr == nil
		if _, err := Contribution(s); (err == nil) != wantContribution {
			t.Fatalf("Contribution(%q) err=%v, want accepted=%v", s, err, wantContribution)
		}
	}
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	start := civil.Date{Year: 2024, Month: 3, Day: 1}
	end := civil.Date{Year: 2024, Month: 6, Day: 30}

	if _, err := StartDate("2024-07-01", end); err == nil {
		t.Fatalf("start after end must be rejected")
	}
	if got, err := StartDate("2024-06-30", end); err != nil || got != end {
		t.Fatalf("start equal to end: got=%v err=%v", got, err)
	}
	if _, err := EndDate("2024-02-29", start); err == nil {
		t.Fatalf("end before start must be rejected")
	}
	if got, err := EndDate("2024-03-01", start); err != nil || got != start {
		t.Fatalf("end equal to start: got=%v err=%v", got, err)
	}
	if _, err := StartDate("2030-01-01", civil.Date{}); err != nil {
		t.Fatalf("start must be accepted while end is unset: %v", err)
	}
	if _, err := EndDate("not-a-date", start); !errors.Is(err, ErrRejected) {
		t.Fatalf("garbage end date err=%v", err)
	}
}

func TestRoleForLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]Role{
		"Dauer (Monate)":      RoleMonths,
		"Baujahr":             RoleYear,
		"Herstellungsjahr":    RoleYear,
		"Beitrag (monatlich)": RoleContribution,
		"Startdatum":          RoleStartDate,
		"Enddatum":            RoleEndDate,
		"Vorname":             RoleText,
		"E-Mail":              RoleText,
	}
	for label, want := range cases {
		if got := RoleForLabel(label); got != want {
			t.Fatalf("RoleForLabel(%q)=%v want %v", label, got, want)
		}
	}
}

func TestToggle(t *testing.T) {
	t.Parallel()

	if !Toggle(false) || Toggle(true) {
		t.Fatalf("Toggle must flip")
	}
}
