package sections

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iskrendev/insurance-portal/internal/app/fields"
	"github.com/iskrendev/insurance-portal/internal/domain"
)

func names(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

func TestFor(t *testing.T) {
	t.Parallel()

	cases := map[domain.Type][]string{
		domain.TypeLife:     {"hasHealthIssues", "healthConditionDetails"},
		domain.TypeProperty: {"propertyType", "propertyAddress", "constructionYear"},
		domain.TypeVehicle:  {"vehicleMake", "vehicleModel", "vehicleYear", "licensePlateNumber"},
	}
	for typ, want := range cases {
		if diff := cmp.Diff(want, names(For(typ))); diff != "" {
			t.Fatalf("For(%s) mismatch (-want +got):\n%s", typ, diff)
		}
	}
	if got := For(""); len(got) != 0 {
		t.Fatalf("For(empty)=%v, want none", got)
	}
}

func TestFor_ReturnsCopies(t *testing.T) {
	t.Parallel()

	a := For(domain.TypeVehicle)
	a[0].Label = "changed"
	if For(domain.TypeVehicle)[0].Label == "changed" {
		t.Fatalf("For must not expose shared state")
	}
}

func TestDescriptorRoles(t *testing.T) {
	t.Parallel()

	want := map[string]fields.Role{
		"duration":         fields.RoleMonths,
		"paymentPerMonth":  fields.RoleContribution,
		"startDate":        fields.RoleStartDate,
		"endDate":          fields.RoleEndDate,
		"constructionYear": fields.RoleYear,
		"vehicleYear":      fields.RoleYear,
		"hasHealthIssues":  fields.RoleCheckbox,
		"firstName":        fields.RoleText,
		"email":            fields.RoleText,
	}
	for name, role := range want {
		d, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) missing", name)
		}
		if d.Role() != role {
			t.Fatalf("%s role=%v want %v", name, d.Role(), role)
		}
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	if Label(domain.TypeVehicle) != "Kfz-Versicherung" {
		t.Fatalf("vehicle label=%q", Label(domain.TypeVehicle))
	}
	if GroupLabel(domain.TypeProperty) != "Immobilienversicherungen" {
		t.Fatalf("property group label=%q", GroupLabel(domain.TypeProperty))
	}
	if Label("ALL") != "Unbekannter Typ" {
		t.Fatalf("unknown label=%q", Label("ALL"))
	}
	if len(TypeOptions()) != 3 {
		t.Fatalf("expected 3 type options")
	}
}
