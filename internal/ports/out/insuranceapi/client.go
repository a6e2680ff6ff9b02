package insuranceapi

import (
	"context"

	"github.com/iskrendev/insurance-portal/internal/domain"
)

// SearchQuery mirrors the query parameters of GET /api/search.
// An empty Type searches all types and yields a grouped result.
type SearchQuery struct {
	Type       domain.Type
	FirstName  string
	FamilyName string
}

// SearchResult carries either a grouped (untyped) or a flat (typed) result.
type SearchResult struct {
	Grouped *domain.Grouped
	Records []domain.Record
}

// All returns every record of the result, flattening grouped results.
func (r SearchResult) All() []domain.Record {
	if r.Grouped != nil {
		return r.Grouped.Flatten()
	}
	return r.Records
}

// Client is the external insurance REST API as seen by the portal.
//
// Every call performs at most one request. There is no retry; callers log failures.
type Client interface {
	GetAll(ctx context.Context) (domain.Grouped, error)
	Get(ctx context.Context, t domain.Type, id domain.RecordID) (domain.Record, error)
	Create(ctx context.Context, r domain.Record) (domain.Record, error)
	Update(ctx context.Context, r domain.Record) (domain.Record, error)
	Delete(ctx context.Context, t domain.Type, id domain.RecordID) error
	Search(ctx context.Context, q SearchQuery) (SearchResult, error)
	Summary(ctx context.Context) (domain.Totals, error)

	// Me returns the authenticated user, or ErrUnauthenticated for anonymous callers.
	Me(ctx context.Context) (domain.User, error)
}
