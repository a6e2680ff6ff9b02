package form

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/app/fields"
	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/domain"
	clockport "github.com/iskrendev/insurance-portal/internal/ports/out/clock"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// HomePath is where the portal navigates after a successful submit or delete.
const HomePath = "/home"

// Outcome tells the page shell what to do after a successful operation.
type Outcome struct {
	Navigate string
	Record   domain.Record
}

// Form is the data-entry surface for one record.
// A Form is owned by a single request and is not safe for concurrent use.
type Form struct {
	draft Draft
	log   *zap.Logger
}

// New returns a create form with default values.
func New(clk clockport.Clock, log *zap.Logger) *Form {
	return Restore(NewDraft(clk.Now()), log)
}

// Edit returns an edit form holding the fetched record.
func Edit(rec domain.Record, clk clockport.Clock, log *zap.Logger) *Form {
	return Restore(DraftFromRecord(rec, clk.Now()), log)
}

// Restore resumes a form from a stored draft.
func Restore(d Draft, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{draft: d, log: log}
}

func (f *Form) Draft() Draft  { return f.draft }
func (f *Form) Editing() bool { return f.draft.Editing() }

// Visible returns the fields to render for the current draft: the common fields,
// then the section of the current type with conditional fields filtered out.
func (f *Form) Visible() []sections.Descriptor {
	out := sections.Common()
	for _, d := range sections.For(f.draft.Type) {
		if d.ShowIf != "" && !f.checked(d.ShowIf) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SetField routes raw input through the field validator and stores it on acceptance.
// On rejection the previous value stays and the rejection is returned.
func (f *Form) SetField(name, raw string) error {
	d, ok := sections.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err := f.set(d, raw); err != nil {
		f.log.Debug("form input rejected", zap.String("field", name), zap.Error(err))
		return err
	}
	return nil
}

// SetType switches the active section. Type-specific values are never cleared.
// An edit form keeps the type it was opened with.
func (f *Form) SetType(t domain.Type) error {
	if t != "" && !t.Valid() {
		return &fields.Rejection{Role: fields.RoleText, Input: string(t), Reason: "unknown insurance type"}
	}
	if f.draft.Editing() && t != f.draft.OriginalType {
		return &fields.Rejection{Role: fields.RoleText, Input: string(t), Reason: "type of an existing record cannot change"}
	}
	f.draft.Type = t
	return nil
}

// Apply applies an HTML form post. Fields are applied in descriptor order and only
// fields that were rendered for the current state are considered, so an unchecked
// checkbox of a hidden section does not clear its value. A rejected start date is
// retried once after the end date, so a whole range can move forward in one post.
// The type is applied last. All rejections are returned.
func (f *Form) Apply(values url.Values) []error {
	var rejected []error
	var retryStart *string

	for _, d := range f.Visible() {
		if d.Name == sections.TypeFieldName {
			continue
		}
		if d.Kind == sections.KindCheckbox {
			f.setChecked(d.Name, values.Has(d.Name))
			continue
		}
		if !values.Has(d.Name) {
			continue
		}
		raw := values.Get(d.Name)
		if err := f.SetField(d.Name, raw); err != nil {
			if d.Name == "startDate" {
				retryStart = &raw
				continue
			}
			rejected = append(rejected, err)
		}
	}
	if retryStart != nil {
		if err := f.SetField("startDate", *retryStart); err != nil {
			rejected = append(rejected, err)
		}
	}
	if values.Has(sections.TypeFieldName) {
		if err := f.SetField(sections.TypeFieldName, values.Get(sections.TypeFieldName)); err != nil {
			rejected = append(rejected, err)
		}
	}
	return rejected
}

func (f *Form) set(d sections.Descriptor, raw string) error {
	if d.Name == sections.TypeFieldName {
		t := domain.Type("")
		if strings.TrimSpace(raw) != "" {
			parsed, err := domain.ParseType(raw)
			if err != nil {
				return &fields.Rejection{Role: fields.RoleText, Input: raw, Reason: "unknown insurance type"}
			}
			t = parsed
		}
		return f.SetType(t)
	}

	switch d.Role() {
	case fields.RoleCheckbox:
		f.setChecked(d.Name, fields.Toggle(f.checked(d.Name)))
	case fields.RoleMonths:
		n, err := fields.Months(raw)
		if err != nil {
			return err
		}
		f.draft.Duration = n
	case fields.RoleYear:
		n, err := fields.Year(raw)
		if err != nil {
			return err
		}
		if d.Name == "vehicleYear" {
			f.draft.VehicleYear = n
		} else {
			f.draft.ConstructionYear = n
		}
	case fields.RoleContribution:
		v, err := fields.Contribution(raw)
		if err != nil {
			return err
		}
		f.draft.PaymentPerMonth = v
	case fields.RoleStartDate:
		v, err := fields.StartDate(raw, f.draft.EndDate)
		if err != nil {
			return err
		}
		f.draft.StartDate = v
	case fields.RoleEndDate:
		v, err := fields.EndDate(raw, f.draft.StartDate)
		if err != nil {
			return err
		}
		f.draft.EndDate = v
	default:
		f.setText(d.Name, fields.Text(raw))
	}
	return nil
}

func (f *Form) setText(name, v string) {
	switch name {
	case "firstName":
		f.draft.FirstName = v
	case "familyName":
		f.draft.FamilyName = v
	case "zipCode":
		f.draft.ZipCode = v
	case "city":
		f.draft.City = v
	case "address":
		f.draft.Address = v
	case "telephone":
		f.draft.Telephone = v
	case "email":
		f.draft.Email = v
	case "healthConditionDetails":
		f.draft.HealthConditionDetails = v
	case "propertyType":
		f.draft.PropertyType = v
	case "propertyAddress":
		f.draft.PropertyAddress = v
	case "vehicleMake":
		f.draft.VehicleMake = v
	case "vehicleModel":
		f.draft.VehicleModel = v
	case "licensePlateNumber":
		f.draft.LicensePlateNumber = v
	}
}

func (f *Form) checked(name string) bool {
	if name == "hasHealthIssues" {
		return f.draft.HasHealthIssues
	}
	return false
}

func (f *Form) setChecked(name string, v bool) {
	if name == "hasHealthIssues" {
		f.draft.HasHealthIssues = v
	}
}

type submission struct {
	FirstName  string `validate:"required"`
	FamilyName string `validate:"required"`
	Type       string `validate:"required,oneof=LIFE PROPERTY VEHICLE"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record checks the required fields and finalizes the draft.
func (f *Form) Record() (domain.Record, error) {
	s := submission{
		FirstName:  strings.TrimSpace(f.draft.FirstName),
		FamilyName: strings.TrimSpace(f.draft.FamilyName),
		Type:       string(f.draft.Type),
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.Record{}, err
		}
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[jsonName(fe.Field())] = fe.Tag()
		}
		return domain.Record{}, &Error{
			Status:  http.StatusUnprocessableEntity,
			Code:    "VALIDATION_ERROR",
			Message: "missing required fields",
			Details: details,
		}
	}
	return f.draft.Record(), nil
}

// Submit sends the draft to the API as a create or update. On failure the error is
// logged and returned; the draft stays as it is.
func (f *Form) Submit(ctx context.Context, api insuranceapi.Client) (Outcome, error) {
	rec, err := f.Record()
	if err != nil {
		f.log.Debug("submit blocked", zap.Error(err))
		return Outcome{}, err
	}

	var saved domain.Record
	if f.draft.Editing() {
		saved, err = api.Update(ctx, rec)
	} else {
		saved, err = api.Create(ctx, rec)
	}
	if err != nil {
		f.log.Error("saving insurance failed",
			zap.String("type", string(rec.Type)),
			zap.String("id", string(rec.ID)),
			zap.Error(err),
		)
		return Outcome{}, fmt.Errorf("save %s insurance: %w", rec.Type.Path(), err)
	}
	return Outcome{Navigate: HomePath, Record: saved}, nil
}

// Delete removes the edited record.
func (f *Form) Delete(ctx context.Context, api insuranceapi.Client) (Outcome, error) {
	if !f.draft.Editing() {
		return Outcome{}, ErrNotEditing
	}
	t := f.draft.OriginalType
	if err := api.Delete(ctx, t, f.draft.ID); err != nil {
		f.log.Error("deleting insurance failed",
			zap.String("type", string(t)),
			zap.String("id", string(f.draft.ID)),
			zap.Error(err),
		)
		return Outcome{}, fmt.Errorf("delete %s insurance: %w", t.Path(), err)
	}
	return Outcome{Navigate: HomePath}, nil
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
