package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/home", 200)
	m.ObserveRequest(http.MethodGet, "/home", 200)
	m.ObserveRejection("months")
	m.ObserveAPI(http.MethodGet, "/api/getall", 200, 25*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/home", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.draftRejections.WithLabelValues("months")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.apiDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRejection("year")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `portal_draft_rejections_total{role="year"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200)
	m.ObserveAPI("GET", "/api/getall", 0, time.Second)
	m.ObserveRejection("x")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
