package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"

	"github.com/iskrendev/insurance-portal/internal/domain"
	draftstoreport "github.com/iskrendev/insurance-portal/internal/ports/out/draftstore"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

type CleanupFunc = func()

type DraftStoreFactory func(t *testing.T) (draftstoreport.Store, CleanupFunc)

// InsuranceAPIFactory returns a client backed by an empty API whose Me reports user.
type InsuranceAPIFactory func(t *testing.T, user *domain.User) (insuranceapi.Client, CleanupFunc)

func RunDraftStore(t *testing.T, newStore DraftStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	key := draftstoreport.Key{Owner: "sid-" + uuid.NewString(), DraftID: domain.DraftID(uuid.NewString())}
	if _, err := store.Get(ctx, key); !errors.Is(err, draftstoreport.ErrNotFound) {
		t.Fatalf("Get missing: err=%v, want ErrNotFound", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	rec := draftstoreport.Record{
		Payload:   []byte(`{"firstName":"Anna"}`),
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := store.Put(ctx, key, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Payload) != string(rec.Payload) {
		t.Fatalf("payload=%s want %s", got.Payload, rec.Payload)
	}

	// Overwrite semantics.
	rec.Payload = []byte(`{"firstName":"Berta"}`)
	if err := store.Put(ctx, key, rec); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = store.Get(ctx, key)
	if err != nil || string(got.Payload) != `{"firstName":"Berta"}` {
		t.Fatalf("expected overwritten draft, got err=%v payload=%s", err, got.Payload)
	}

	// Drafts never cross owners.
	other := draftstoreport.Key{Owner: "sid-" + uuid.NewString(), DraftID: key.DraftID}
	if _, err := store.Get(ctx, other); !errors.Is(err, draftstoreport.ErrNotFound) {
		t.Fatalf("Get other owner: err=%v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, draftstoreport.ErrNotFound) {
		t.Fatalf("Get after delete: err=%v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete of missing draft must be a no-op, got %v", err)
	}

	expired := draftstoreport.Key{Owner: key.Owner, DraftID: domain.DraftID(uuid.NewString())}
	if err := store.Put(ctx, expired, draftstoreport.Record{
		Payload:   []byte(`{}`),
		UpdatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Put expired: %v", err)
	}
	if _, err := store.Get(ctx, expired); !errors.Is(err, draftstoreport.ErrNotFound) {
		t.Fatalf("Get expired: err=%v, want ErrNotFound", err)
	}

	ownerless := draftstoreport.Key{DraftID: domain.DraftID(uuid.NewString())}
	if err := store.Put(ctx, ownerless, rec); !errors.Is(err, draftstoreport.ErrInvalidDraft) {
		t.Fatalf("Put without owner: err=%v, want ErrInvalidDraft", err)
	}
	backwards := draftstoreport.Record{Payload: []byte(`{}`), UpdatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	if err := store.Put(ctx, key, backwards); !errors.Is(err, draftstoreport.ErrInvalidDraft) {
		t.Fatalf("Put expiring before update: err=%v, want ErrInvalidDraft", err)
	}
}

func sampleRecord(t domain.Type, first, family string) domain.Record {
	r := domain.Record{
		Type: t,
		Holder: domain.Holder{
			FirstName:  first,
			FamilyName: family,
			ZipCode:    "10115",
			City:       "Berlin",
			Telephone:  "030 123",
			Email:      "kunde@example.com",
		},
		Contract: domain.Contract{
			DurationMonths:  12,
			PaymentPerMonth: 10.5,
			StartDate:       civil.Date{Year: 2024, Month: 1, Day: 1},
			EndDate:         civil.Date{Year: 2024, Month: 12, Day: 31},
		},
	}
	switch t {
	case domain.TypeLife:
		r.Details = domain.LifeDetails{HasHealthIssues: true, HealthConditionDetails: "Asthma"}
	case domain.TypeProperty:
		r.Details = domain.PropertyDetails{PropertyType: "Haus", PropertyAddress: "Hauptstr. 1", ConstructionYear: 1985}
	case domain.TypeVehicle:
		r.Details = domain.VehicleDetails{Make: "VW", Model: "Golf", Year: 2019, LicensePlateNumber: "B-AB 123"}
	}
	return r
}

func RunInsuranceAPI(t *testing.T, newClient InsuranceAPIFactory) {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{ID: "42", Login: "octocat"}
	api, cleanup := newClient(t, user)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	me, err := api.Me(ctx)
	if err != nil || me.Login != "octocat" {
		t.Fatalf("Me: got=%+v err=%v", me, err)
	}

	life, err := api.Create(ctx, sampleRecord(domain.TypeLife, "Anna", "Muster"))
	if err != nil {
		t.Fatalf("Create life: %v", err)
	}
	if life.ID == "" {
		t.Fatalf("Create must assign an id")
	}
	vehicle, err := api.Create(ctx, sampleRecord(domain.TypeVehicle, "Anna", "Beispiel"))
	if err != nil {
		t.Fatalf("Create vehicle: %v", err)
	}
	if _, err := api.Create(ctx, sampleRecord(domain.TypeProperty, "Bernd", "Muster")); err != nil {
		t.Fatalf("Create property: %v", err)
	}

	got, err := api.Get(ctx, domain.TypeVehicle, vehicle.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Vehicle().Model != "Golf" || got.Holder.FamilyName != "Beispiel" {
		t.Fatalf("Get returned %+v", got)
	}
	if got.Contract.EndDate != (civil.Date{Year: 2024, Month: 12, Day: 31}) {
		t.Fatalf("end date=%v", got.Contract.EndDate)
	}
	if _, err := api.Get(ctx, domain.TypeLife, "does-not-exist"); !errors.Is(err, insuranceapi.ErrNotFound) {
		t.Fatalf("Get missing: err=%v, want ErrNotFound", err)
	}

	all, err := api.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all.Life) != 1 || len(all.Property) != 1 || len(all.Vehicle) != 1 {
		t.Fatalf("GetAll sizes: %d/%d/%d", len(all.Life), len(all.Property), len(all.Vehicle))
	}

	res, err := api.Search(ctx, insuranceapi.SearchQuery{FirstName: "Anna"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Grouped == nil || len(res.All()) != 2 {
		t.Fatalf("Search Anna: %+v", res)
	}
	res, err = api.Search(ctx, insuranceapi.SearchQuery{Type: domain.TypeLife, FamilyName: "Muster"})
	if err != nil {
		t.Fatalf("Search typed: %v", err)
	}
	if res.Grouped != nil || len(res.Records) != 1 || res.Records[0].ID != life.ID {
		t.Fatalf("Search typed Muster: %+v", res)
	}
	res, err = api.Search(ctx, insuranceapi.SearchQuery{FirstName: "Anna", FamilyName: "Muster"})
	if err != nil || len(res.All()) != 1 {
		t.Fatalf("Search both names: res=%+v err=%v", res, err)
	}

	upd := life
	upd.Holder.City = "Hamburg"
	if _, err := api.Update(ctx, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = api.Get(ctx, domain.TypeLife, life.ID)
	if err != nil || got.Holder.City != "Hamburg" {
		t.Fatalf("after update: got=%+v err=%v", got, err)
	}

	totals, err := api.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if totals.LifeCount != 1 || totals.PropertyCount != 1 || totals.VehicleCount != 1 {
		t.Fatalf("Summary counts: %+v", totals)
	}
	if totals.TotalAmount != 3*12*10.5 {
		t.Fatalf("Summary total=%v want %v", totals.TotalAmount, 3*12*10.5)
	}

	if err := api.Delete(ctx, domain.TypeLife, life.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := api.Get(ctx, domain.TypeLife, life.ID); !errors.Is(err, insuranceapi.ErrNotFound) {
		t.Fatalf("Get after delete: err=%v, want ErrNotFound", err)
	}

	anon, cleanupAnon := newClient(t, nil)
	if cleanupAnon != nil {
		t.Cleanup(cleanupAnon)
	}
	if _, err := anon.Me(ctx); !errors.Is(err, insuranceapi.ErrUnauthenticated) {
		t.Fatalf("anonymous Me: err=%v, want ErrUnauthenticated", err)
	}
}
