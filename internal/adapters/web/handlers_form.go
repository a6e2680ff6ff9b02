package web

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/app/fields"
	"github.com/iskrendev/insurance-portal/internal/app/form"
	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/draftstore"
)

const addPath = "/insurances/add"

// actionSave is the value of the save button. Any other post only refreshes the draft.
const actionSave = "save"

type fieldView struct {
	Name       string
	Label      string
	Kind       sections.Kind
	Value      string
	Checked    bool
	Required   bool
	Disabled   bool
	AutoSubmit bool
	Options    []sections.Option
	Min        string
	Max        string
}

type formView struct {
	Found      bool
	Editing    bool
	Action     string
	CancelPath string
	Fields     []fieldView
}

func fieldViews(f *form.Form) []fieldView {
	d := f.Draft()
	descs := f.Visible()
	out := make([]fieldView, 0, len(descs))
	for _, desc := range descs {
		v := fieldView{
			Name:     desc.Name,
			Label:    desc.Label,
			Kind:     desc.Kind,
			Value:    d.Value(desc.Name),
			Required: desc.Required,
		}
		switch desc.Kind {
		case sections.KindSelect:
			v.Options = sections.TypeOptions()
			v.Disabled = f.Editing()
			v.AutoSubmit = !f.Editing()
		case sections.KindCheckbox:
			v.Checked = v.Value == "true"
			v.AutoSubmit = true
		case sections.KindDate:
			if desc.Name == "startDate" {
				v.Max = d.Value("endDate")
			} else {
				v.Min = d.Value("startDate")
			}
		}
		out = append(out, v)
	}
	return out
}

func withDraft(base string, id domain.DraftID) string {
	if id == "" {
		return base
	}
	return base + "?draft=" + url.QueryEscape(string(id))
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, title string, view formView) {
	s.render(w, r, status, "form", title, view)
}

func formViewOf(f *form.Form, base, cancel string, id domain.DraftID) formView {
	return formView{
		Found:      true,
		Editing:    f.Editing(),
		Action:     withDraft(base, id),
		CancelPath: cancel,
		Fields:     fieldViews(f),
	}
}

// openDraft resumes the draft named by the request, or returns nil when it is
// missing, expired or does not belong to this screen.
func (s *Server) openDraft(r *http.Request, accept func(*form.Form) bool) (*form.Form, domain.DraftID) {
	id := domain.DraftID(r.URL.Query().Get("draft"))
	if id == "" {
		return nil, ""
	}
	sid, _ := SessionFromContext(r.Context())
	f, err := s.drafts.Open(r.Context(), sid, id)
	if err != nil {
		if !errors.Is(err, draftstore.ErrNotFound) {
			s.log.Warn("opening draft failed", zap.String("draft", string(id)), zap.Error(err))
		}
		return nil, ""
	}
	if !accept(f) {
		return nil, ""
	}
	return f, id
}

// startDraft stores f and redirects to the screen holding it. If the store fails the
// form is rendered without a draft.
func (s *Server) startDraft(w http.ResponseWriter, r *http.Request, f *form.Form, base, cancel, title string) {
	sid, _ := SessionFromContext(r.Context())
	id, err := s.drafts.Start(r.Context(), sid, f)
	if err != nil {
		s.log.Error("starting draft failed", zap.Error(err))
		s.renderForm(w, r, http.StatusOK, title, formViewOf(f, base, cancel, ""))
		return
	}
	http.Redirect(w, r, withDraft(base, id), http.StatusSeeOther)
}

func (s *Server) countRejections(rejected []error) {
	for _, err := range rejected {
		var rj *fields.Rejection
		if errors.As(err, &rj) {
			s.metrics.ObserveRejection(rj.Role.String())
		}
	}
}

// process applies a form post. A save submits the record; anything else stores the
// draft and shows it again. Rejected input and failed saves are logged and counted,
// never shown: the form stays populated with the last accepted values.
func (s *Server) process(w http.ResponseWriter, r *http.Request, f *form.Form, id domain.DraftID, base, cancel, title string) {
	ctx := r.Context()
	sid, _ := SessionFromContext(ctx)

	rejected := f.Apply(r.PostForm)
	s.countRejections(rejected)

	if r.PostForm.Get("action") == actionSave {
		out, err := f.Submit(ctx, s.api)
		if err == nil {
			if id != "" {
				s.drafts.Discard(ctx, sid, id)
			}
			http.Redirect(w, r, out.Navigate, http.StatusSeeOther)
			return
		}
		id = s.keepDraft(r, f, id)
		s.renderForm(w, r, http.StatusOK, title, formViewOf(f, base, cancel, id))
		return
	}

	id = s.keepDraft(r, f, id)
	if id == "" {
		s.renderForm(w, r, http.StatusOK, title, formViewOf(f, base, cancel, id))
		return
	}
	http.Redirect(w, r, withDraft(base, id), http.StatusSeeOther)
}

// keepDraft saves f under id, starting a new draft when id is empty. It returns the
// draft id, or "" when the store failed.
func (s *Server) keepDraft(r *http.Request, f *form.Form, id domain.DraftID) domain.DraftID {
	ctx := r.Context()
	sid, _ := SessionFromContext(ctx)
	var err error
	if id == "" {
		id, err = s.drafts.Start(ctx, sid, f)
	} else {
		err = s.drafts.Save(ctx, sid, id, f)
	}
	if err != nil {
		s.log.Error("saving draft failed", zap.String("draft", string(id)), zap.Error(err))
		return ""
	}
	return id
}

func isCreate(f *form.Form) bool { return !f.Editing() }

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	const title = "Neue Versicherung"
	if f, id := s.openDraft(r, isCreate); f != nil {
		s.renderForm(w, r, http.StatusOK, title, formViewOf(f, addPath, form.HomePath, id))
		return
	}
	s.startDraft(w, r, form.New(s.clock, s.log), addPath, form.HomePath, title)
}

func (s *Server) handleAddSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Das Formular konnte nicht gelesen werden.")
		return
	}
	f, id := s.openDraft(r, isCreate)
	if f == nil {
		f = form.New(s.clock, s.log)
	}
	s.process(w, r, f, id, addPath, form.HomePath, "Neue Versicherung")
}

func editing(t domain.Type, id domain.RecordID) func(*form.Form) bool {
	return func(f *form.Form) bool {
		d := f.Draft()
		return d.Editing() && d.ID == id && d.OriginalType == t
	}
}

// loadEdit fetches the record behind an edit screen. A failure is logged and
// renders the screen without a form.
func (s *Server) loadEdit(w http.ResponseWriter, r *http.Request, t domain.Type, id domain.RecordID) *form.Form {
	rec, err := s.api.Get(r.Context(), t, id)
	if err != nil {
		s.log.Error("loading insurance failed",
			zap.String("type", string(t)),
			zap.String("id", string(id)),
			zap.Error(err),
		)
		s.renderForm(w, r, http.StatusOK, "Versicherung bearbeiten", formView{CancelPath: detailsPath(t, id)})
		return nil
	}
	return form.Edit(rec, s.clock, s.log)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	const title = "Versicherung bearbeiten"
	t, id, ok := s.pathRecord(w, r)
	if !ok {
		return
	}
	base, cancel := detailsPath(t, id)+"/edit", detailsPath(t, id)
	if f, did := s.openDraft(r, editing(t, id)); f != nil {
		s.renderForm(w, r, http.StatusOK, title, formViewOf(f, base, cancel, did))
		return
	}
	f := s.loadEdit(w, r, t, id)
	if f == nil {
		return
	}
	s.startDraft(w, r, f, base, cancel, title)
}

func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	t, id, ok := s.pathRecord(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Das Formular konnte nicht gelesen werden.")
		return
	}
	f, did := s.openDraft(r, editing(t, id))
	if f == nil {
		if f = s.loadEdit(w, r, t, id); f == nil {
			return
		}
	}
	s.process(w, r, f, did, detailsPath(t, id)+"/edit", detailsPath(t, id), "Versicherung bearbeiten")
}

type deleteView struct {
	Action     string
	CancelPath string
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	t, id, ok := s.pathRecord(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "delete", "Bestätigung", deleteView{
		Action:     detailsPath(t, id) + "/delete",
		CancelPath: detailsPath(t, id),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	t, id, ok := s.pathRecord(w, r)
	if !ok {
		return
	}
	f := form.Restore(form.Draft{ID: id, OriginalType: t, Type: t}, s.log)
	out, err := f.Delete(r.Context(), s.api)
	if err != nil {
		// Delete already logged the failure; the confirmation stays as it was.
		s.render(w, r, http.StatusOK, "delete", "Bestätigung", deleteView{
			Action:     detailsPath(t, id) + "/delete",
			CancelPath: detailsPath(t, id),
		})
		return
	}
	http.Redirect(w, r, out.Navigate, http.StatusSeeOther)
}
