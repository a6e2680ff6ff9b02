package directory

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// FilterAll is the type filter value that searches every insurance type.
const FilterAll = "ALL"

// ErrEmptyQuery indicates a blank search query. No request is sent.
var ErrEmptyQuery = errors.New("empty search query")

// Row is one search hit as displayed.
type Row struct {
	domain.Summary
	Name      string
	TypeLabel string
	Link      string
}

// Result is the outcome of a search. Performed is set once a search ran, so the
// screen can tell "no results" from "not searched yet".
type Result struct {
	Query     string
	Type      domain.Type
	Performed bool
	Items     []domain.Summary
}

// Rows returns the display rows of d in its current order.
func Rows(d *Directory) []Row {
	items := d.Items()
	out := make([]Row, 0, len(items))
	for _, s := range items {
		out = append(out, Row{
			Summary:   s,
			Name:      s.DisplayName(),
			TypeLabel: sections.Label(s.Type),
			Link:      s.DetailsPath(),
		})
	}
	return out
}

// ParseFilter maps the type select value to a type. ALL and blank mean no filter.
func ParseFilter(v string) (domain.Type, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, FilterAll) {
		return "", nil
	}
	return domain.ParseType(v)
}

// Searcher runs the name search of the search screen.
type Searcher struct {
	api insuranceapi.Client
	log *zap.Logger
}

func NewSearcher(api insuranceapi.Client, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{api: api, log: log}
}

// Search splits query on whitespace. Two or more tokens search first name plus
// family name in one request. A single token searches the first name and, when
// that finds nothing, the family name. Multi-token queries never fall back.
//
// API failures are logged and produce an empty, performed result.
func (s *Searcher) Search(ctx context.Context, query string, t domain.Type) (Result, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		s.log.Debug("search skipped: empty query")
		return Result{Query: query, Type: t}, ErrEmptyQuery
	}
	res := Result{Query: strings.Join(tokens, " "), Type: t, Performed: true}

	if len(tokens) >= 2 {
		res.Items = s.run(ctx, insuranceapi.SearchQuery{
			Type:       t,
			FirstName:  tokens[0],
			FamilyName: strings.Join(tokens[1:], " "),
		})
		return res, nil
	}

	res.Items = s.run(ctx, insuranceapi.SearchQuery{Type: t, FirstName: tokens[0]})
	if len(res.Items) == 0 {
		res.Items = s.run(ctx, insuranceapi.SearchQuery{Type: t, FamilyName: tokens[0]})
	}
	return res, nil
}

func (s *Searcher) run(ctx context.Context, q insuranceapi.SearchQuery) []domain.Summary {
	out, err := s.api.Search(ctx, q)
	if err != nil {
		s.log.Error("searching insurances failed",
			zap.String("type", string(q.Type)),
			zap.String("firstName", q.FirstName),
			zap.String("familyName", q.FamilyName),
			zap.Error(err),
		)
		return nil
	}
	return Summaries(out.All())
}
