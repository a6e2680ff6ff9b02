package domain

import (
	"fmt"
	"strings"

	"github.com/golang-sql/civil"
)

// Type is the discriminant selecting which detail attributes apply to a record.
type Type string

const (
	TypeLife     Type = "LIFE"
	TypeProperty Type = "PROPERTY"
	TypeVehicle  Type = "VEHICLE"
)

// Types lists the discriminants in display order.
func Types() []Type {
	return []Type{TypeLife, TypeProperty, TypeVehicle}
}

// ParseType accepts the discriminant in either case ("life", "LIFE").
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeLife, TypeProperty, TypeVehicle:
		return t, nil
	default:
		return "", fmt.Errorf("unknown insurance type %q", s)
	}
}

func (t Type) Valid() bool {
	switch t {
	case TypeLife, TypeProperty, TypeVehicle:
		return true
	default:
		return false
	}
}

// Path is the lower-case segment used in API and portal routes.
func (t Type) Path() string { return strings.ToLower(string(t)) }

// Holder is the customer part shared by every record.
type Holder struct {
	FirstName  string
	FamilyName string
	ZipCode    string
	City       string
	Address    string
	Telephone  string
	Email      string
}

// FullName is "first family" with whitespace collapsed.
func (h Holder) FullName() string {
	return NormalizeHumanName(h.FirstName + " " + h.FamilyName)
}

// Contract holds the commercial terms shared by every record.
type Contract struct {
	DurationMonths  int
	PaymentPerMonth float64
	StartDate       civil.Date
	EndDate         civil.Date
}

// Amount is the total contract value (duration × monthly payment).
func (c Contract) Amount() float64 {
	return float64(c.DurationMonths) * c.PaymentPerMonth
}

// Details is the type-specific part of a record. Exactly one implementation is
// carried by a record and it always matches Record.Type.
type Details interface {
	InsuranceType() Type
}

type LifeDetails struct {
	HasHealthIssues bool
	// HealthConditionDetails is only meaningful when HasHealthIssues is set.
	HealthConditionDetails string
}

func (LifeDetails) InsuranceType() Type { return TypeLife }

type PropertyDetails struct {
	PropertyType     string
	PropertyAddress  string
	ConstructionYear int
}

func (PropertyDetails) InsuranceType() Type { return TypeProperty }

type VehicleDetails struct {
	Make               string
	Model              string
	Year               int
	LicensePlateNumber string
}

func (VehicleDetails) InsuranceType() Type { return TypeVehicle }

// Record is one insurance record. ID is empty until the API created it.
type Record struct {
	ID   RecordID
	Type Type

	Holder   Holder
	Contract Contract
	Details  Details
}

// Life returns the life details, or the zero value when the record is not LIFE.
func (r Record) Life() LifeDetails {
	d, _ := r.Details.(LifeDetails)
	return d
}

func (r Record) Property() PropertyDetails {
	d, _ := r.Details.(PropertyDetails)
	return d
}

func (r Record) Vehicle() VehicleDetails {
	d, _ := r.Details.(VehicleDetails)
	return d
}

// Summary projects the record into a directory entry.
func (r Record) Summary() Summary {
	return Summary{
		ID:         r.ID,
		FirstName:  r.Holder.FirstName,
		FamilyName: r.Holder.FamilyName,
		Type:       r.Type,
	}
}

// Summary is the list-display projection of a record.
type Summary struct {
	ID         RecordID
	FirstName  string
	FamilyName string
	Type       Type
}

func (s Summary) DisplayName() string {
	return NormalizeHumanName(s.FirstName + " " + s.FamilyName)
}

// DetailsPath is the portal route of the record's details screen.
func (s Summary) DetailsPath() string {
	return "/details/" + s.Type.Path() + "/" + string(s.ID)
}

// Grouped holds records split by type, the shape of "getall" and untyped search.
type Grouped struct {
	Life     []Record
	Property []Record
	Vehicle  []Record
}

// Flatten concatenates life, property and vehicle records in that order.
func (g Grouped) Flatten() []Record {
	out := make([]Record, 0, len(g.Life)+len(g.Property)+len(g.Vehicle))
	out = append(out, g.Life...)
	out = append(out, g.Property...)
	out = append(out, g.Vehicle...)
	return out
}

// ByType returns the collection for t.
func (g Grouped) ByType(t Type) []Record {
	switch t {
	case TypeLife:
		return g.Life
	case TypeProperty:
		return g.Property
	case TypeVehicle:
		return g.Vehicle
	default:
		return nil
	}
}

// Totals is the aggregate statistics reported by the API.
type Totals struct {
	TotalAmount   float64
	LifeCount     int64
	PropertyCount int64
	VehicleCount  int64
}

// User is the authenticated GitHub account.
type User struct {
	ID    UserID
	Login string
}
