package domain

import "testing"

func TestParseType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"LIFE", TypeLife, true},
		{"life", TypeLife, true},
		{" Property ", TypeProperty, true},
		{"vehicle", TypeVehicle, true},
		{"ALL", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseType(%q)=%q,%v want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseType(%q) expected error", tc.in)
		}
	}
}

func TestGrouped_FlattenKeepsTypeOrder(t *testing.T) {
	t.Parallel()

	g := Grouped{
		Life:     []Record{{ID: "l1", Type: TypeLife}},
		Property: []Record{{ID: "p1", Type: TypeProperty}, {ID: "p2", Type: TypeProperty}},
		Vehicle:  []Record{{ID: "v1", Type: TypeVehicle}},
	}
	got := g.Flatten()
	want := []RecordID{"l1", "p1", "p2", "v1"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.ID != want[i] {
			t.Fatalf("[%d]=%q want %q", i, r.ID, want[i])
		}
	}
}

func TestRecord_VariantAccessors(t *testing.T) {
	t.Parallel()

	r := Record{Type: TypeVehicle, Details: VehicleDetails{Make: "VW", Year: 2019}}
	if r.Vehicle().Make != "VW" {
		t.Fatalf("vehicle make=%q", r.Vehicle().Make)
	}
	if r.Life() != (LifeDetails{}) {
		t.Fatalf("expected zero life details for vehicle record")
	}
	if got := (Summary{ID: "7", Type: TypeVehicle}).DetailsPath(); got != "/details/vehicle/7" {
		t.Fatalf("DetailsPath=%q", got)
	}
}

func TestContract_Amount(t *testing.T) {
	t.Parallel()

	c := Contract{DurationMonths: 12, PaymentPerMonth: 25.5}
	if c.Amount() != 306 {
		t.Fatalf("Amount=%v want 306", c.Amount())
	}
}
