// Package restapi is the HTTP client of the insurance REST API.
package restapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/platform/metrics"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// maxErrorBody bounds how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

var _ insuranceapi.Client = (*Client)(nil)

// Client implements insuranceapi.Client over HTTP. Every method sends exactly one
// request and never retries. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. to add a cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout bounds each request of the default client. A client passed to
// WithHTTPClient keeps its own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	def := &http.Client{
		// The backend answers unauthenticated calls with a login redirect.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	c := &Client{
		base:    u,
		http:    def,
		log:     zap.NewNop(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == def {
		def.Timeout = c.timeout
	}
	return c, nil
}

func (c *Client) GetAll(ctx context.Context) (domain.Grouped, error) {
	var out allInsurancesJSON
	if err := c.do(ctx, http.MethodGet, "/api/getall", "/api/getall", nil, nil, &out); err != nil {
		return domain.Grouped{}, err
	}
	return fromWireGrouped(out)
}

func (c *Client) Get(ctx context.Context, t domain.Type, id domain.RecordID) (domain.Record, error) {
	if !t.Valid() {
		return domain.Record{}, insuranceapi.ErrNotFound
	}
	var out insuranceJSON
	path := "/api/" + t.Path() + "/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodGet, "/api/{type}/{id}", path, nil, nil, &out); err != nil {
		return domain.Record{}, err
	}
	return fromWire(out, t)
}

func (c *Client) Create(ctx context.Context, r domain.Record) (domain.Record, error) {
	if !r.Type.Valid() {
		return domain.Record{}, fmt.Errorf("create insurance: invalid type %q", r.Type)
	}
	body := toWire(r)
	body.ID = nil
	var out insuranceJSON
	if err := c.do(ctx, http.MethodPost, "/api/{type}", "/api/"+r.Type.Path(), nil, body, &out); err != nil {
		return domain.Record{}, err
	}
	return fromWire(out, r.Type)
}

func (c *Client) Update(ctx context.Context, r domain.Record) (domain.Record, error) {
	if !r.Type.Valid() || r.ID == "" {
		return domain.Record{}, insuranceapi.ErrNotFound
	}
	var out insuranceJSON
	path := "/api/" + r.Type.Path() + "/" + url.PathEscape(string(r.ID))
	if err := c.do(ctx, http.MethodPut, "/api/{type}/{id}", path, nil, toWire(r), &out); err != nil {
		return domain.Record{}, err
	}
	return fromWire(out, r.Type)
}

func (c *Client) Delete(ctx context.Context, t domain.Type, id domain.RecordID) error {
	if !t.Valid() {
		return insuranceapi.ErrNotFound
	}
	path := "/api/" + t.Path() + "/" + url.PathEscape(string(id))
	return c.do(ctx, http.MethodDelete, "/api/{type}/{id}", path, nil, nil, nil)
}

// Search sends GET /api/search. Without a type the backend answers grouped, with a
// type it answers with a flat list.
func (c *Client) Search(ctx context.Context, q insuranceapi.SearchQuery) (insuranceapi.SearchResult, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type.Path())
	}
	if q.FirstName != "" {
		params.Set("firstName", q.FirstName)
	}
	if q.FamilyName != "" {
		params.Set("familyName", q.FamilyName)
	}

	if q.Type == "" {
		var out allInsurancesJSON
		if err := c.search(ctx, params, &out); err != nil {
			return insuranceapi.SearchResult{}, err
		}
		g, err := fromWireGrouped(out)
		if err != nil {
			return insuranceapi.SearchResult{}, err
		}
		return insuranceapi.SearchResult{Grouped: &g}, nil
	}

	var out []insuranceJSON
	if err := c.search(ctx, params, &out); err != nil {
		return insuranceapi.SearchResult{}, err
	}
	recs, err := fromWireList(out, q.Type)
	if err != nil {
		return insuranceapi.SearchResult{}, err
	}
	return insuranceapi.SearchResult{Records: recs}, nil
}

func (c *Client) search(ctx context.Context, params url.Values, out any) error {
	err := c.do(ctx, http.MethodGet, "/api/search", "/api/search", params, nil, out)
	var se *insuranceapi.StatusError
	if errors.As(err, &se) && se.Status == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", insuranceapi.ErrInvalidQuery, se.Body)
	}
	return err
}

func (c *Client) Summary(ctx context.Context) (domain.Totals, error) {
	var out summaryJSON
	if err := c.do(ctx, http.MethodGet, "/api/summary", "/api/summary", nil, nil, &out); err != nil {
		return domain.Totals{}, err
	}
	return domain.Totals{
		TotalAmount:   out.TotalAmount,
		LifeCount:     out.LifeInsuranceCount,
		PropertyCount: out.PropertyInsuranceCount,
		VehicleCount:  out.VehicleInsuranceCount,
	}, nil
}

// Me accepts both a user object and a bare login string. An empty answer or the
// login "anonymous" means no session.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var raw bytes.Buffer
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", "/api/auth/me", nil, nil, &raw); err != nil {
		return domain.User{}, err
	}
	u, err := parseUser(raw.Bytes())
	if err != nil {
		return domain.User{}, err
	}
	if u.Login == "" || u.Login == "anonymous" {
		return domain.User{}, insuranceapi.ErrUnauthenticated
	}
	return u, nil
}

func parseUser(b []byte) (domain.User, error) {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return domain.User{}, nil
	case b[0] == '{':
		var u userJSON
		if err := json.Unmarshal(b, &u); err != nil {
			return domain.User{}, fmt.Errorf("decode current user: %w", err)
		}
		out := domain.User{Login: u.Login}
		switch id := u.ID.(type) {
		case string:
			out.ID = domain.UserID(id)
		case float64:
			out.ID = domain.UserID(strconv.FormatFloat(id, 'f', -1, 64))
		}
		return out, nil
	case b[0] == '"':
		var login string
		if err := json.Unmarshal(b, &login); err != nil {
			return domain.User{}, fmt.Errorf("decode current user: %w", err)
		}
		return domain.User{Login: login}, nil
	default:
		return domain.User{Login: string(b)}, nil
	}
}

// do sends one request. route is the path template used as metrics label. out may
// be nil, a *bytes.Buffer for the raw body, or a value to decode JSON into.
func (c *Client) do(ctx context.Context, method, route, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookiesFrom(ctx) {
		req.AddCookie(ck)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(method, route, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveAPI(method, route, resp.StatusCode, time.Since(start))
	c.log.Debug("insurance api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, insuranceapi.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode >= 300 && resp.StatusCode < 400:
		return fmt.Errorf("%s %s: %w", method, path, insuranceapi.ErrUnauthenticated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &insuranceapi.StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(b)}
	}

	switch dst := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *bytes.Buffer:
		if _, err := dst.ReadFrom(resp.Body); err != nil {
			return fmt.Errorf("read %s %s: %w", method, path, err)
		}
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
		return nil
	}
}
