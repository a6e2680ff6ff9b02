package restapi

import (
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/iskrendev/insurance-portal/internal/domain"
)

// insuranceJSON is the record shape of the insurance API. Type-specific fields of
// other types are omitted on write and ignored on read.
type insuranceJSON struct {
	ID         nullable.Nullable[string] `json:"id,omitempty"`
	FirstName  string                    `json:"firstName"`
	FamilyName string                    `json:"familyName"`
	ZipCode    string                    `json:"zipCode"`
	City       string                    `json:"city"`
	Address    string                    `json:"address"`
	Telephone  string                    `json:"telephone"`
	Email      string                    `json:"email"`
	Type       string                    `json:"type"`

	Duration        int                 `json:"duration"`
	PaymentPerMonth float64             `json:"paymentPerMonth"`
	StartDate       *openapi_types.Date `json:"startDate,omitempty"`
	EndDate         *openapi_types.Date `json:"endDate,omitempty"`

	HasHealthIssues        *bool                     `json:"hasHealthIssues,omitempty"`
	HealthConditionDetails nullable.Nullable[string] `json:"healthConditionDetails,omitempty"`

	PropertyType     string `json:"propertyType,omitempty"`
	PropertyAddress  string `json:"propertyAddress,omitempty"`
	ConstructionYear *int   `json:"constructionYear,omitempty"`

	VehicleMake        string `json:"vehicleMake,omitempty"`
	VehicleModel       string `json:"vehicleModel,omitempty"`
	VehicleYear        *int   `json:"vehicleYear,omitempty"`
	LicensePlateNumber string `json:"licensePlateNumber,omitempty"`
}

type allInsurancesJSON struct {
	LifeInsurances     []insuranceJSON `json:"lifeInsurances"`
	PropertyInsurances []insuranceJSON `json:"propertyInsurances"`
	VehicleInsurances  []insuranceJSON `json:"vehicleInsurances"`
}

type summaryJSON struct {
	TotalAmount            float64 `json:"totalAmount"`
	LifeInsuranceCount     int64   `json:"lifeInsuranceCount"`
	PropertyInsuranceCount int64   `json:"propertyInsuranceCount"`
	VehicleInsuranceCount  int64   `json:"vehicleInsuranceCount"`
}

type userJSON struct {
	ID    any    `json:"id"`
	Login string `json:"login"`
}

func toWire(r domain.Record) insuranceJSON {
	out := insuranceJSON{
		FirstName:       r.Holder.FirstName,
		FamilyName:      r.Holder.FamilyName,
		ZipCode:         r.Holder.ZipCode,
		City:            r.Holder.City,
		Address:         r.Holder.Address,
		Telephone:       r.Holder.Telephone,
		Email:           r.Holder.Email,
		Type:            string(r.Type),
		Duration:        r.Contract.DurationMonths,
		PaymentPerMonth: r.Contract.PaymentPerMonth,
		StartDate:       wireDate(r.Contract.StartDate),
		EndDate:         wireDate(r.Contract.EndDate),
	}
	if r.ID != "" {
		out.ID = nullable.NewNullableWithValue(string(r.ID))
	}
	switch d := r.Details.(type) {
	case domain.LifeDetails:
		has := d.HasHealthIssues
		out.HasHealthIssues = &has
		if d.HasHealthIssues {
			out.HealthConditionDetails = nullable.NewNullableWithValue(d.HealthConditionDetails)
		} else {
			out.HealthConditionDetails = nullable.NewNullNullable[string]()
		}
	case domain.PropertyDetails:
		year := d.ConstructionYear
		out.PropertyType = d.PropertyType
		out.PropertyAddress = d.PropertyAddress
		out.ConstructionYear = &year
	case domain.VehicleDetails:
		year := d.Year
		out.VehicleMake = d.Make
		out.VehicleModel = d.Model
		out.VehicleYear = &year
		out.LicensePlateNumber = d.LicensePlateNumber
	}
	return out
}

// fromWire converts an API record. fallback is used when the payload carries no type.
func fromWire(w insuranceJSON, fallback domain.Type) (domain.Record, error) {
	t := fallback
	if w.Type != "" {
		parsed, err := domain.ParseType(w.Type)
		if err != nil {
			return domain.Record{}, err
		}
		t = parsed
	}
	if !t.Valid() {
		return domain.Record{}, fmt.Errorf("insurance record without type")
	}

	r := domain.Record{
		Type: t,
		Holder: domain.Holder{
			FirstName:  w.FirstName,
			FamilyName: w.FamilyName,
			ZipCode:    w.ZipCode,
			City:       w.City,
			Address:    w.Address,
			Telephone:  w.Telephone,
			Email:      w.Email,
		},
		Contract: domain.Contract{
			DurationMonths:  w.Duration,
			PaymentPerMonth: w.PaymentPerMonth,
			StartDate:       civilDate(w.StartDate),
			EndDate:         civilDate(w.EndDate),
		},
	}
	if id, err := w.ID.Get(); err == nil {
		r.ID = domain.RecordID(id)
	}
	switch t {
	case domain.TypeLife:
		life := domain.LifeDetails{HasHealthIssues: w.HasHealthIssues != nil && *w.HasHealthIssues}
		if details, err := w.HealthConditionDetails.Get(); err == nil {
			life.HealthConditionDetails = details
		}
		r.Details = life
	case domain.TypeProperty:
		r.Details = domain.PropertyDetails{
			PropertyType:     w.PropertyType,
			PropertyAddress:  w.PropertyAddress,
			ConstructionYear: derefInt(w.ConstructionYear),
		}
	case domain.TypeVehicle:
		r.Details = domain.VehicleDetails{
			Make:               w.VehicleMake,
			Model:              w.VehicleModel,
			Year:               derefInt(w.VehicleYear),
			LicensePlateNumber: w.LicensePlateNumber,
		}
	}
	return r, nil
}

func fromWireList(ws []insuranceJSON, t domain.Type) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(ws))
	for _, w := range ws {
		r, err := fromWire(w, t)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func fromWireGrouped(w allInsurancesJSON) (domain.Grouped, error) {
	var (
		g   domain.Grouped
		err error
	)
	if g.Life, err = fromWireList(w.LifeInsurances, domain.TypeLife); err != nil {
		return domain.Grouped{}, err
	}
	if g.Property, err = fromWireList(w.PropertyInsurances, domain.TypeProperty); err != nil {
		return domain.Grouped{}, err
	}
	if g.Vehicle, err = fromWireList(w.VehicleInsurances, domain.TypeVehicle); err != nil {
		return domain.Grouped{}, err
	}
	return g, nil
}

func wireDate(d civil.Date) *openapi_types.Date {
	if !d.IsValid() {
		return nil
	}
	return &openapi_types.Date{Time: d.In(time.UTC)}
}

func civilDate(d *openapi_types.Date) civil.Date {
	if d == nil || d.Time.IsZero() {
		return civil.Date{}
	}
	return civil.DateOf(d.Time)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
