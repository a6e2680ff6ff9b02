package form

import (
	"strconv"
	"time"

	"github.com/golang-sql/civil"

	"github.com/iskrendev/insurance-portal/internal/domain"
)

// defaultYear is the initial construction and vehicle year of a fresh draft.
const defaultYear = 1900

// Draft is the flattened per-field state of a record being created or edited.
//
// It keeps all three type-specific groups at once, so switching the type and
// back restores what was entered before.
type Draft struct {
	ID           domain.RecordID `json:"id,omitempty"`
	OriginalType domain.Type     `json:"originalType,omitempty"`

	Type domain.Type `json:"type"`

	FirstName  string `json:"firstName"`
	FamilyName string `json:"familyName"`
	ZipCode    string `json:"zipCode"`
	City       string `json:"city"`
	Address    string `json:"address"`
	Telephone  string `json:"telephone"`
	Email      string `json:"email"`

	Duration        int        `json:"duration"`
	PaymentPerMonth float64    `json:"paymentPerMonth"`
	StartDate       civil.Date `json:"startDate"`
	EndDate         civil.Date `json:"endDate"`

	HasHealthIssues        bool   `json:"hasHealthIssues"`
	HealthConditionDetails string `json:"healthConditionDetails"`

	PropertyType     string `json:"propertyType"`
	PropertyAddress  string `json:"propertyAddress"`
	ConstructionYear int    `json:"constructionYear"`

	VehicleMake        string `json:"vehicleMake"`
	VehicleModel       string `json:"vehicleModel"`
	VehicleYear        int    `json:"vehicleYear"`
	LicensePlateNumber string `json:"licensePlateNumber"`
}

// NewDraft returns the defaults of an empty draft: both dates today, numbers zero.
// The type starts empty so the user has to pick one.
func NewDraft(now time.Time) Draft {
	today := civil.DateOf(now)
	return Draft{
		StartDate:        today,
		EndDate:          today,
		ConstructionYear: defaultYear,
		VehicleYear:      defaultYear,
	}
}

// DraftFromRecord overlays a fetched record onto the defaults.
func DraftFromRecord(r domain.Record, now time.Time) Draft {
	d := NewDraft(now)
	d.ID = r.ID
	d.OriginalType = r.Type
	d.Type = r.Type

	d.FirstName = r.Holder.FirstName
	d.FamilyName = r.Holder.FamilyName
	d.ZipCode = r.Holder.ZipCode
	d.City = r.Holder.City
	d.Address = r.Holder.Address
	d.Telephone = r.Holder.Telephone
	d.Email = r.Holder.Email

	d.Duration = r.Contract.DurationMonths
	d.PaymentPerMonth = r.Contract.PaymentPerMonth
	if r.Contract.StartDate.IsValid() {
		d.StartDate = r.Contract.StartDate
	}
	if r.Contract.EndDate.IsValid() {
		d.EndDate = r.Contract.EndDate
	}

	switch v := r.Details.(type) {
	case domain.LifeDetails:
		d.HasHealthIssues = v.HasHealthIssues
		d.HealthConditionDetails = v.HealthConditionDetails
	case domain.PropertyDetails:
		d.PropertyType = v.PropertyType
		d.PropertyAddress = v.PropertyAddress
		d.ConstructionYear = v.ConstructionYear
	case domain.VehicleDetails:
		d.VehicleMake = v.Make
		d.VehicleModel = v.Model
		d.VehicleYear = v.Year
		d.LicensePlateNumber = v.LicensePlateNumber
	}
	return d
}

// Editing reports whether the draft belongs to an existing record.
func (d Draft) Editing() bool { return d.ID != "" }

// Record finalizes the draft into the tagged union. Only the group selected by
// Type is carried; the others are dropped.
func (d Draft) Record() domain.Record {
	r := domain.Record{
		ID:   d.ID,
		Type: d.Type,
		Holder: domain.Holder{
			FirstName:  d.FirstName,
			FamilyName: d.FamilyName,
			ZipCode:    d.ZipCode,
			City:       d.City,
			Address:    d.Address,
			Telephone:  d.Telephone,
			Email:      d.Email,
		},
		Contract: domain.Contract{
			DurationMonths:  d.Duration,
			PaymentPerMonth: d.PaymentPerMonth,
			StartDate:       d.StartDate,
			EndDate:         d.EndDate,
		},
	}
	switch d.Type {
	case domain.TypeLife:
		life := domain.LifeDetails{HasHealthIssues: d.HasHealthIssues}
		if d.HasHealthIssues {
			life.HealthConditionDetails = d.HealthConditionDetails
		}
		r.Details = life
	case domain.TypeProperty:
		r.Details = domain.PropertyDetails{
			PropertyType:     d.PropertyType,
			PropertyAddress:  d.PropertyAddress,
			ConstructionYear: d.ConstructionYear,
		}
	case domain.TypeVehicle:
		r.Details = domain.VehicleDetails{
			Make:               d.VehicleMake,
			Model:              d.VehicleModel,
			Year:               d.VehicleYear,
			LicensePlateNumber: d.LicensePlateNumber,
		}
	}
	return r
}

// Value returns the current value of a field in its input representation.
func (d Draft) Value(name string) string {
	switch name {
	case "firstName":
		return d.FirstName
	case "familyName":
		return d.FamilyName
	case "zipCode":
		return d.ZipCode
	case "city":
		return d.City
	case "address":
		return d.Address
	case "telephone":
		return d.Telephone
	case "email":
		return d.Email
	case "type":
		return string(d.Type)
	case "duration":
		return strconv.Itoa(d.Duration)
	case "paymentPerMonth":
		return strconv.FormatFloat(d.PaymentPerMonth, 'f', -1, 64)
	case "startDate":
		return dateValue(d.StartDate)
	case "endDate":
		return dateValue(d.EndDate)
	case "hasHealthIssues":
		return strconv.FormatBool(d.HasHealthIssues)
	case "healthConditionDetails":
		return d.HealthConditionDetails
	case "propertyType":
		return d.PropertyType
	case "propertyAddress":
		return d.PropertyAddress
	case "constructionYear":
		return strconv.Itoa(d.ConstructionYear)
	case "vehicleMake":
		return d.VehicleMake
	case "vehicleModel":
		return d.VehicleModel
	case "vehicleYear":
		return strconv.Itoa(d.VehicleYear)
	case "licensePlateNumber":
		return d.LicensePlateNumber
	default:
		return ""
	}
}

func dateValue(d civil.Date) string {
	if !d.IsValid() {
		return ""
	}
	return d.String()
}
