// Package sections decides which form fields exist for a record type.
// It holds no validation logic.
package sections

import (
	"github.com/iskrendev/insurance-portal/internal/app/fields"
	"github.com/iskrendev/insurance-portal/internal/domain"
)

type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindTel      Kind = "tel"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindCheckbox Kind = "checkbox"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
)

// Descriptor describes one field to render and collect.
type Descriptor struct {
	Name  string
	Label string
	Kind  Kind
	// ShowIf names a checkbox field that must be set for this field to be shown.
	ShowIf   string
	Required bool
}

// Role resolves the validation role from the label, the same way for every caller.
func (d Descriptor) Role() fields.Role {
	if d.Kind == KindCheckbox {
		return fields.RoleCheckbox
	}
	return fields.RoleForLabel(d.Label)
}

// Option is a select option.
type Option struct {
	Value string
	Label string
}

const TypeFieldName = "type"

var common = []Descriptor{
	{Name: "firstName", Label: "Vorname", Kind: KindText, Required: true},
	{Name: "familyName", Label: "Name", Kind: KindText, Required: true},
	{Name: "zipCode", Label: "PLZ", Kind: KindText},
	{Name: "city", Label: "Ort", Kind: KindText},
	{Name: "address", Label: "Adresse", Kind: KindText},
	{Name: "telephone", Label: "Telefon", Kind: KindTel},
	{Name: "email", Label: "E-Mail", Kind: KindEmail},
	{Name: "duration", Label: "Dauer (Monate)", Kind: KindNumber},
	{Name: "paymentPerMonth", Label: "Beitrag (monatlich)", Kind: KindNumber},
	{Name: "startDate", Label: "Startdatum", Kind: KindDate},
	{Name: "endDate", Label: "Enddatum", Kind: KindDate},
	{Name: TypeFieldName, Label: "Versicherungsart", Kind: KindSelect, Required: true},
}

var life = []Descriptor{
	{Name: "hasHealthIssues", Label: "Hat gesundheitliche Probleme", Kind: KindCheckbox},
	{Name: "healthConditionDetails", Label: "Gesundheitszustand Details", Kind: KindTextarea, ShowIf: "hasHealthIssues"},
}

var property = []Descriptor{
	{Name: "propertyType", Label: "Immobilienart", Kind: KindText},
	{Name: "propertyAddress", Label: "Immobilienadresse", Kind: KindText},
	{Name: "constructionYear", Label: "Baujahr", Kind: KindNumber},
}

var vehicle = []Descriptor{
	{Name: "vehicleMake", Label: "Kfz-Marke", Kind: KindText},
	{Name: "vehicleModel", Label: "Kfz-Modell", Kind: KindText},
	{Name: "vehicleYear", Label: "Herstellungsjahr", Kind: KindNumber},
	{Name: "licensePlateNumber", Label: "Kfz-Kennzeichen", Kind: KindText},
}

// Common returns the ordered fields every record has, ending with the type select.
func Common() []Descriptor { return clone(common) }

// For returns the ordered extra fields for t. Unknown or empty types have none.
func For(t domain.Type) []Descriptor {
	switch t {
	case domain.TypeLife:
		return clone(life)
	case domain.TypeProperty:
		return clone(property)
	case domain.TypeVehicle:
		return clone(vehicle)
	default:
		return nil
	}
}

// All returns common fields followed by every type-specific field.
func All() []Descriptor {
	out := Common()
	for _, t := range domain.Types() {
		out = append(out, For(t)...)
	}
	return out
}

// Lookup finds a descriptor by field name across all sections.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// TypeOptions is the option list of the type select.
func TypeOptions() []Option {
	return []Option{
		{Value: string(domain.TypeLife), Label: Label(domain.TypeLife)},
		{Value: string(domain.TypeProperty), Label: Label(domain.TypeProperty)},
		{Value: string(domain.TypeVehicle), Label: Label(domain.TypeVehicle)},
	}
}

// Label is the display name of a record type.
func Label(t domain.Type) string {
	switch t {
	case domain.TypeLife:
		return "Lebensversicherung"
	case domain.TypeProperty:
		return "Immobilienversicherung"
	case domain.TypeVehicle:
		return "Kfz-Versicherung"
	default:
		return "Unbekannter Typ"
	}
}

// GroupLabel is the heading of a list of records of type t.
func GroupLabel(t domain.Type) string {
	if !t.Valid() {
		return Label(t)
	}
	return Label(t) + "en"
}

func clone(ds []Descriptor) []Descriptor {
	return append([]Descriptor(nil), ds...)
}
