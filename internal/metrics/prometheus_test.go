package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.IncPageBuilt()
	rec.IncPageBuilt()
	rec.IncPageSkipped("read")
	rec.IncRequest("page", http.StatusOK)
	rec.IncRequest("not_found", http.StatusNotFound)
	rec.ObserveBuildDuration(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.pagesBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.pagesSkipped.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("not_found", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.buildDuration))
}

func TestHTTPHandlerExposesMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	rec.IncPageBuilt()

	rr := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "docsite_pages_built_total 1")
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncPageBuilt()
	r.IncPageSkipped("render")
	r.ObserveBuildDuration(time.Second)
	r.IncRequest("page", http.StatusOK)
}
