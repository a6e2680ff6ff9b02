package restapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	meminsuranceapi "github.com/iskrendev/insurance-portal/internal/adapters/memory/insuranceapi"
	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

const testSession = "s3cret"

// seenRequest is a request as received by the fake backend.
type seenRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
	Session  string
}

// fakeBackend serves the insurance REST API from an in-memory API. Only requests
// carrying the test session cookie are authenticated.
type fakeBackend struct {
	api  *meminsuranceapi.API
	user *domain.User

	mu   sync.Mutex
	seen []seenRequest
}

func newFakeBackend(t *testing.T, user *domain.User) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{api: meminsuranceapi.NewAPI(user), user: user}
	srv := httptest.NewServer(fb.routes())
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) requests() []seenRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]seenRequest(nil), fb.seen...)
}

func (fb *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b, _ := io.ReadAll(req.Body)
			seen := seenRequest{Method: req.Method, Path: req.URL.Path, RawQuery: req.URL.RawQuery, Body: string(b)}
			if ck, err := req.Cookie("JSESSIONID"); err == nil {
				seen.Session = ck.Value
			}
			fb.mu.Lock()
			fb.seen = append(fb.seen, seen)
			fb.mu.Unlock()
			req.Body = io.NopCloser(bytes.NewReader(b))
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/api/auth/me", func(w http.ResponseWriter, req *http.Request) {
		ck, err := req.Cookie("JSESSIONID")
		if fb.user == nil || err != nil || ck.Value != testSession {
			_, _ = io.WriteString(w, "anonymous")
			return
		}
		_, _ = io.WriteString(w, fb.user.Login)
	})
	r.Get("/api/getall", func(w http.ResponseWriter, req *http.Request) {
		g, err := fb.api.GetAll(req.Context())
		writeResult(w, toWireGrouped(g), err)
	})
	r.Get("/api/summary", func(w http.ResponseWriter, req *http.Request) {
		t, err := fb.api.Summary(req.Context())
		writeResult(w, summaryJSON{
			TotalAmount:            t.TotalAmount,
			LifeInsuranceCount:     t.LifeCount,
			PropertyInsuranceCount: t.PropertyCount,
			VehicleInsuranceCount:  t.VehicleCount,
		}, err)
	})
	r.Get("/api/search", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		sq := insuranceapi.SearchQuery{FirstName: q.Get("firstName"), FamilyName: q.Get("familyName")}
		if v := q.Get("type"); v != "" && v != "all" {
			typ, err := domain.ParseType(v)
			if err != nil {
				http.Error(w, "Invalid insurance type", http.StatusBadRequest)
				return
			}
			sq.Type = typ
		}
		res, err := fb.api.Search(req.Context(), sq)
		if errors.Is(err, insuranceapi.ErrInvalidQuery) {
			http.Error(w, "At least one of firstName or familyName must be provided", http.StatusBadRequest)
			return
		}
		if res.Grouped != nil {
			writeResult(w, toWireGrouped(*res.Grouped), err)
			return
		}
		list := make([]insuranceJSON, 0, len(res.Records))
		for _, r := range res.Records {
			list = append(list, toWire(r))
		}
		writeResult(w, list, err)
	})
	r.Route("/api/{type}", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			rec, ok := decodeRecord(w, req)
			if !ok {
				return
			}
			created, err := fb.api.Create(req.Context(), rec)
			if err != nil {
				writeResult(w, nil, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toWire(created))
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			typ, _ := domain.ParseType(chi.URLParam(req, "type"))
			rec, err := fb.api.Get(req.Context(), typ, domain.RecordID(chi.URLParam(req, "id")))
			writeResult(w, toWire(rec), err)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			rec, ok := decodeRecord(w, req)
			if !ok {
				return
			}
			rec.ID = domain.RecordID(chi.URLParam(req, "id"))
			updated, err := fb.api.Update(req.Context(), rec)
			writeResult(w, toWire(updated), err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			typ, _ := domain.ParseType(chi.URLParam(req, "type"))
			err := fb.api.Delete(req.Context(), typ, domain.RecordID(chi.URLParam(req, "id")))
			writeResult(w, nil, err)
		})
	})
	return r
}

func decodeRecord(w http.ResponseWriter, req *http.Request) (domain.Record, bool) {
	typ, err := domain.ParseType(chi.URLParam(req, "type"))
	if err != nil {
		http.NotFound(w, req)
		return domain.Record{}, false
	}
	var in insuranceJSON
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.Record{}, false
	}
	in.Type = string(typ)
	rec, err := fromWire(in, typ)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.Record{}, false
	}
	return rec, true
}

func writeResult(w http.ResponseWriter, v any, err error) {
	switch {
	case errors.Is(err, insuranceapi.ErrNotFound):
		http.Error(w, "No such insurance", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if v == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func toWireGrouped(g domain.Grouped) allInsurancesJSON {
	conv := func(rs []domain.Record) []insuranceJSON {
		out := make([]insuranceJSON, 0, len(rs))
		for _, r := range rs {
			out = append(out, toWire(r))
		}
		return out
	}
	return allInsurancesJSON{
		LifeInsurances:     conv(g.Life),
		PropertyInsurances: conv(g.Property),
		VehicleInsurances:  conv(g.Vehicle),
	}
}
