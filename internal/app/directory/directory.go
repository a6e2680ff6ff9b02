package directory

import (
	"context"
	"net/url"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// Directory is a sortable, collapsible list of record summaries.
type Directory struct {
	items []domain.Summary
	state State
}

// NewDirectory starts collapsed and ascending.
func NewDirectory(items []domain.Summary) *Directory {
	return Restore(items, State{Ascending: true})
}

// Restore returns a directory over items with a previously encoded toggle state.
func Restore(items []domain.Summary, s State) *Directory {
	cp := make([]domain.Summary, len(items))
	copy(cp, items)
	return &Directory{items: cp, state: s}
}

func Summaries(recs []domain.Record) []domain.Summary {
	out := make([]domain.Summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Summary())
	}
	return out
}

func (d *Directory) State() State    { return d.state }
func (d *Directory) Expanded() bool  { return d.state.Expanded }
func (d *Directory) Ascending() bool { return d.state.Ascending }
func (d *Directory) Len() int        { return len(d.items) }

// ToggleExpanded flips the expand state. The collection is untouched.
func (d *Directory) ToggleExpanded() { d.state.Expanded = !d.state.Expanded }

// ToggleSort flips between ascending and descending order.
func (d *Directory) ToggleSort() { d.state.Ascending = !d.state.Ascending }

// Items returns the collection in the current order. The order is recomputed from
// the collection on every call; descending is the exact reverse of ascending.
func (d *Directory) Items() []domain.Summary {
	out := SortAscending(d.items)
	if !d.state.Ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// SortAscending returns a stably sorted copy of items ordered by first name plus
// family name, case-insensitive with German collation.
func SortAscending(items []domain.Summary) []domain.Summary {
	out := make([]domain.Summary, len(items))
	copy(out, items)

	// A Collator keeps internal buffers and is not safe for concurrent use.
	c := collate.New(language.German, collate.IgnoreCase)
	keys := make([]string, len(out))
	for i, s := range out {
		keys[i] = s.FirstName + " " + s.FamilyName
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return c.CompareString(keys[idx[a]], keys[idx[b]]) < 0
	})
	sorted := make([]domain.Summary, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

// Section is one per-type directory of the home view.
type Section struct {
	Type   domain.Type
	Label  string
	Prefix string
	*Directory
}

// Home is the grouped directory view.
type Home struct {
	Sections []Section
}

// Lister loads the home view.
type Lister struct {
	api insuranceapi.Client
	log *zap.Logger
}

func NewLister(api insuranceapi.Client, log *zap.Logger) *Lister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lister{api: api, log: log}
}

// Home fetches every record and restores the toggle state of each section from q.
// An API failure is logged and yields empty sections.
func (l *Lister) Home(ctx context.Context, q url.Values) Home {
	grouped, err := l.api.GetAll(ctx)
	if err != nil {
		l.log.Error("loading insurances failed", zap.Error(err))
		grouped = domain.Grouped{}
	}
	h := Home{Sections: make([]Section, 0, 3)}
	for _, t := range domain.Types() {
		prefix := t.Path()
		h.Sections = append(h.Sections, Section{
			Type:      t,
			Label:     sections.GroupLabel(t),
			Prefix:    prefix,
			Directory: Restore(Summaries(grouped.ByType(t)), StateFrom(q, prefix)),
		})
	}
	return h
}
