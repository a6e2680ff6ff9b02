package web

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/app/auth"
	"github.com/iskrendev/insurance-portal/internal/app/directory"
	"github.com/iskrendev/insurance-portal/internal/app/form"
	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/domain"
)

// LoginURL starts the backend's GitHub OAuth flow.
const LoginURL = "/oauth2/authorization/github"

func (s *Server) handleLogin(resolver auth.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver.Resolve(r.Context()).Authenticated() {
			http.Redirect(w, r, "/home", http.StatusFound)
			return
		}
		s.render(w, r, http.StatusOK, "login", "Anmelden", struct{ LoginURL string }{LoginURL})
	}
}

// handleLocalLogout drops the backend session cookie when no backend proxy is
// configured.
func (s *Server) handleLocalLogout(cookie string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie != "" {
			http.SetCookie(w, &http.Cookie{Name: cookie, Value: "", Path: "/", MaxAge: -1})
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

type sectionView struct {
	Label      string
	Count      int
	Expanded   bool
	Ascending  bool
	ToggleOpen string
	ToggleSort string
	Rows       []directory.Row
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	home := s.lister.Home(r.Context(), q)

	views := make([]sectionView, 0, len(home.Sections))
	for _, sec := range home.Sections {
		st := sec.State()
		views = append(views, sectionView{
			Label:      sec.Label,
			Count:      sec.Len(),
			Expanded:   sec.Expanded(),
			Ascending:  sec.Ascending(),
			ToggleOpen: "?" + st.ToggleExpandedQuery(q, sec.Prefix),
			ToggleSort: "?" + st.ToggleSortQuery(q, sec.Prefix),
			Rows:       directory.Rows(sec.Directory),
		})
	}
	s.render(w, r, http.StatusOK, "home", "Übersicht", views)
}

type searchView struct {
	Query      string
	Filter     string
	Options    []sections.Option
	Performed  bool
	Ascending  bool
	ToggleSort string
	Rows       []directory.Row
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := searchView{
		Query:   q.Get("q"),
		Filter:  directory.FilterAll,
		Options: append([]sections.Option{{Value: directory.FilterAll, Label: "Alle Versicherungen"}}, sections.TypeOptions()...),
	}
	t, err := directory.ParseFilter(q.Get("type"))
	if err != nil {
		s.log.Debug("unknown search type filter", zap.String("type", q.Get("type")))
		t = ""
	}
	if t != "" {
		view.Filter = string(t)
	}

	if strings.TrimSpace(view.Query) != "" {
		res, err := s.searcher.Search(r.Context(), view.Query, t)
		if err == nil {
			st := directory.StateFrom(q, "")
			d := directory.Restore(res.Items, st)
			view.Performed = res.Performed
			view.Ascending = st.Ascending
			view.ToggleSort = "?" + st.ToggleSortQuery(q, "")
			view.Rows = directory.Rows(d)
		}
	}
	s.render(w, r, http.StatusOK, "search", "Versicherung suchen", view)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "statistics", "Statistiken", s.stats.Load(r.Context()))
}

type detailRow struct {
	Label string
	Value string
	Href  template.URL
}

type detailsView struct {
	Type       domain.Type
	ID         domain.RecordID
	Found      bool
	Rows       []detailRow
	EditPath   string
	DeletePath string
}

// pathRecord reads {type} and {id}. An unknown type renders the not-found page.
func (s *Server) pathRecord(w http.ResponseWriter, r *http.Request) (domain.Type, domain.RecordID, bool) {
	t, err := domain.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		s.notFound(w, r)
		return "", "", false
	}
	return t, domain.RecordID(chi.URLParam(r, "id")), true
}

func detailsPath(t domain.Type, id domain.RecordID) string {
	return domain.Summary{ID: id, Type: t}.DetailsPath()
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	t, id, ok := s.pathRecord(w, r)
	if !ok {
		return
	}
	base := detailsPath(t, id)
	view := detailsView{Type: t, ID: id, EditPath: base + "/edit", DeletePath: base + "/delete"}

	rec, err := s.api.Get(r.Context(), t, id)
	if err != nil {
		s.log.Error("loading insurance failed",
			zap.String("type", string(t)),
			zap.String("id", string(id)),
			zap.Error(err),
		)
		s.render(w, r, http.StatusOK, "details", "Versicherungsdaten", view)
		return
	}
	view.Found = true
	view.Rows = detailRows(form.Edit(rec, s.clock, nil))
	s.render(w, r, http.StatusOK, "details", "Versicherungsdaten", view)
}

func detailRows(f *form.Form) []detailRow {
	d := f.Draft()
	fields := f.Visible()
	rows := make([]detailRow, 0, len(fields))
	for _, fd := range fields {
		v := d.Value(fd.Name)
		row := detailRow{Label: fd.Label, Value: v}
		switch fd.Kind {
		case sections.KindSelect:
			row.Value = sections.Label(d.Type)
		case sections.KindCheckbox:
			row.Value = "Nein"
			if v == "true" {
				row.Value = "Ja"
			}
		case sections.KindTel:
			if v != "" {
				row.Href = template.URL("tel:" + url.PathEscape(v))
			}
		case sections.KindEmail:
			if v != "" {
				row.Href = template.URL("mailto:" + url.PathEscape(v))
			}
		}
		rows = append(rows, row)
	}
	return rows
}
