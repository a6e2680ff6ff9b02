package insuranceapi

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// API is an in-memory implementation of insuranceapi.Client. It stands in for the
// REST backend in dev mode and tests, following the backend's semantics:
// exact-match name search and totals as the sum of duration × monthly payment.
// It is safe for concurrent use.
type API struct {
	mu sync.RWMutex

	byType map[domain.Type]map[domain.RecordID]domain.Record
	user   *domain.User

	newID func() domain.RecordID
}

// NewAPI returns an empty API. A nil user makes Me report anonymous callers.
func NewAPI(user *domain.User) *API {
	a := &API{
		byType: make(map[domain.Type]map[domain.RecordID]domain.Record, 3),
		newID: func() domain.RecordID {
			return domain.RecordID(uuid.NewString())
		},
	}
	for _, t := range domain.Types() {
		a.byType[t] = make(map[domain.RecordID]domain.Record)
	}
	if user != nil {
		u := *user
		a.user = &u
	}
	return a
}

func (a *API) GetAll(ctx context.Context) (domain.Grouped, error) {
	_ = ctx
	a.mu.RLock()
	defer a.mu.RUnlock()
	return domain.Grouped{
		Life:     a.listLocked(domain.TypeLife, nil),
		Property: a.listLocked(domain.TypeProperty, nil),
		Vehicle:  a.listLocked(domain.TypeVehicle, nil),
	}, nil
}

func (a *API) Get(ctx context.Context, t domain.Type, id domain.RecordID) (domain.Record, error) {
	_ = ctx
	a.mu.RLock()
	defer a.mu.RUnlock()
	recs, ok := a.byType[t]
	if !ok {
		return domain.Record{}, insuranceapi.ErrNotFound
	}
	r, ok := recs[id]
	if !ok {
		return domain.Record{}, insuranceapi.ErrNotFound
	}
	return r, nil
}

func (a *API) Create(ctx context.Context, r domain.Record) (domain.Record, error) {
	_ = ctx
	if !r.Type.Valid() {
		return domain.Record{}, &insuranceapi.StatusError{Method: "POST", Path: "/api/" + r.Type.Path(), Status: 404}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	r.ID = a.newID()
	a.byType[r.Type][r.ID] = r
	return r, nil
}

func (a *API) Update(ctx context.Context, r domain.Record) (domain.Record, error) {
	_ = ctx
	a.mu.Lock()
	defer a.mu.Unlock()
	recs, ok := a.byType[r.Type]
	if !ok {
		return domain.Record{}, insuranceapi.ErrNotFound
	}
	if _, ok := recs[r.ID]; !ok {
		return domain.Record{}, insuranceapi.ErrNotFound
	}
	recs[r.ID] = r
	return r, nil
}

func (a *API) Delete(ctx context.Context, t domain.Type, id domain.RecordID) error {
	_ = ctx
	a.mu.Lock()
	defer a.mu.Unlock()
	recs, ok := a.byType[t]
	if !ok {
		return insuranceapi.ErrNotFound
	}
	if _, ok := recs[id]; !ok {
		return insuranceapi.ErrNotFound
	}
	delete(recs, id)
	return nil
}

func (a *API) Search(ctx context.Context, q insuranceapi.SearchQuery) (insuranceapi.SearchResult, error) {
	_ = ctx
	first := strings.TrimSpace(q.FirstName)
	family := strings.TrimSpace(q.FamilyName)
	if first == "" && family == "" {
		return insuranceapi.SearchResult{}, insuranceapi.ErrInvalidQuery
	}
	match := func(r domain.Record) bool {
		if first != "" && r.Holder.FirstName != first {
			return false
		}
		if family != "" && r.Holder.FamilyName != family {
			return false
		}
		return true
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if q.Type == "" {
		return insuranceapi.SearchResult{Grouped: &domain.Grouped{
			Life:     a.listLocked(domain.TypeLife, match),
			Property: a.listLocked(domain.TypeProperty, match),
			Vehicle:  a.listLocked(domain.TypeVehicle, match),
		}}, nil
	}
	if !q.Type.Valid() {
		return insuranceapi.SearchResult{}, insuranceapi.ErrInvalidQuery
	}
	return insuranceapi.SearchResult{Records: a.listLocked(q.Type, match)}, nil
}

func (a *API) Summary(ctx context.Context) (domain.Totals, error) {
	_ = ctx
	a.mu.RLock()
	defer a.mu.RUnlock()
	var t domain.Totals
	for _, typ := range domain.Types() {
		for _, r := range a.byType[typ] {
			t.TotalAmount += r.Contract.Amount()
		}
	}
	t.LifeCount = int64(len(a.byType[domain.TypeLife]))
	t.PropertyCount = int64(len(a.byType[domain.TypeProperty]))
	t.VehicleCount = int64(len(a.byType[domain.TypeVehicle]))
	return t, nil
}

func (a *API) Me(ctx context.Context) (domain.User, error) {
	_ = ctx
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return domain.User{}, insuranceapi.ErrUnauthenticated
	}
	return *a.user, nil
}

// listLocked returns the records of t ordered by id for deterministic output.
func (a *API) listLocked(t domain.Type, keep func(domain.Record) bool) []domain.Record {
	out := make([]domain.Record, 0, len(a.byType[t]))
	for _, r := range a.byType[t] {
		if keep != nil && !keep(r) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
