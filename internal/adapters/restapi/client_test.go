package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/platform/metrics"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	require.Error(t, err)
}

func TestWithTimeout_AppliesToDefaultClientOnly(t *testing.T) {
	c, err := New("http://api.example", WithTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.http.Timeout)

	hc := &http.Client{Timeout: time.Minute}
	c, err = New("http://api.example", WithHTTPClient(hc), WithTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Same(t, hc, c.http)
	assert.Equal(t, time.Minute, hc.Timeout)

	c, err = New("http://api.example")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.http.Timeout)
}

func TestCreate_LifeRecordRequest(t *testing.T) {
	fb, srv := newFakeBackend(t, nil)
	c := newTestClient(t, srv)

	rec := domain.Record{
		Type:   domain.TypeLife,
		Holder: domain.Holder{FirstName: "Anna", FamilyName: "Muster"},
		Contract: domain.Contract{
			StartDate: civil.Date{Year: 2024, Month: 5, Day: 17},
			EndDate:   civil.Date{Year: 2024, Month: 5, Day: 17},
		},
		Details: domain.LifeDetails{},
	}
	created, err := c.Create(context.Background(), rec)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	reqs := fb.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/life", reqs[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	assert.Equal(t, "Anna", body["firstName"])
	assert.Equal(t, "Muster", body["familyName"])
	assert.Equal(t, "LIFE", body["type"])
	assert.Equal(t, "2024-05-17", body["startDate"])
	assert.Equal(t, float64(0), body["duration"])
	assert.Equal(t, false, body["hasHealthIssues"])
	assert.Nil(t, body["healthConditionDetails"])
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "vehicleMake")
	assert.NotContains(t, body, "constructionYear")
}

func TestSearch_QueryStrings(t *testing.T) {
	fb, srv := newFakeBackend(t, nil)
	c := newTestClient(t, srv)
	ctx := context.Background()

	res, err := c.Search(ctx, insuranceapi.SearchQuery{FirstName: "Anna", FamilyName: "Muster"})
	require.NoError(t, err)
	require.NotNil(t, res.Grouped)

	res, err = c.Search(ctx, insuranceapi.SearchQuery{Type: domain.TypeVehicle, FamilyName: "von Muster"})
	require.NoError(t, err)
	assert.Nil(t, res.Grouped)

	_, err = c.Search(ctx, insuranceapi.SearchQuery{})
	require.ErrorIs(t, err, insuranceapi.ErrInvalidQuery)

	reqs := fb.requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "familyName=Muster&firstName=Anna", reqs[0].RawQuery)
	assert.Equal(t, "familyName=von+Muster&type=vehicle", reqs[1].RawQuery)
}

func TestGet_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Get(context.Background(), domain.TypeLife, "42")
	require.Error(t, err)
	assert.False(t, errors.Is(err, insuranceapi.ErrNotFound))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, insuranceapi.ErrNotFound},
		{http.StatusUnauthorized, insuranceapi.ErrUnauthenticated},
		{http.StatusForbidden, insuranceapi.ErrUnauthenticated},
		{http.StatusFound, insuranceapi.ErrUnauthenticated},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tc.status == http.StatusFound {
				w.Header().Set("Location", "/oauth2/authorization/github")
			}
			w.WriteHeader(tc.status)
		}))
		c, err := New(srv.URL)
		require.NoError(t, err)
		_, err = c.GetAll(context.Background())
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		c.http.CloseIdleConnections()
		srv.Close()
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err := newTestClient(t, srv).Summary(context.Background())
	var se *insuranceapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "boom\n", se.Body)
}

func TestMe_Shapes(t *testing.T) {
	cases := map[string]struct {
		body    string
		want    domain.User
		wantErr error
	}{
		"object":    {body: `{"id":42,"login":"octocat"}`, want: domain.User{ID: "42", Login: "octocat"}},
		"string id": {body: `{"id":"abc","login":"octocat"}`, want: domain.User{ID: "abc", Login: "octocat"}},
		"quoted":    {body: `"octocat"`, want: domain.User{Login: "octocat"}},
		"plain":     {body: "octocat", want: domain.User{Login: "octocat"}},
		"anonymous": {body: "anonymous", wantErr: insuranceapi.ErrUnauthenticated},
		"empty":     {body: "", wantErr: insuranceapi.ErrUnauthenticated},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			got, err := newTestClient(t, srv).Me(context.Background())
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCookiesAreForwarded(t *testing.T) {
	fb, srv := newFakeBackend(t, &domain.User{ID: "1", Login: "octocat"})
	c := newTestClient(t, srv)

	ctx := WithCookies(context.Background(), &http.Cookie{Name: "JSESSIONID", Value: testSession})
	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "octocat", u.Login)
	assert.Equal(t, testSession, fb.requests()[0].Session)

	_, err = c.Me(context.Background())
	require.ErrorIs(t, err, insuranceapi.ErrUnauthenticated)
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, srv).GetAll(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetricsObserved(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	m := metrics.New()
	c := newTestClient(t, srv, WithMetrics(m))

	_, err := c.GetAll(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `portal_api_request_duration_seconds_count{code="200",method="GET",route="/api/getall"} 1`)
}
