package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/hourwatch/internal/fetch"
)

var _ fetch.Recorder = (*Recorder)(nil)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	require.NoError(t, err)

	rec.Processed(3)
	rec.Processed(0)
	rec.Processed(2)
	rec.Failure(fetch.ScopeItem)
	rec.Failure(fetch.ScopeItem)
	rec.Failure(fetch.ScopeBatch)

	assert.Equal(t, 5.0, testutil.ToFloat64(rec.processed))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.failures.WithLabelValues(fetch.ScopeItem)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.failures.WithLabelValues(fetch.ScopeBatch)))
}

func TestNewRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	require.NoError(t, err)
	rec.Processed(1)

	srv := NewServer(":0", reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "hourwatch_messages_processed_total 1")
}
