package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveFormation(t *testing.T) {
	m := New()

	m.ObserveFormation(time.Now(), []int{3, 3, 4}, 2)
	m.ObserveFailure(OutcomeInvalid)

	require.Equal(t, 1.0, testutil.ToFloat64(m.FormationsTotal.WithLabelValues(OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FormationsTotal.WithLabelValues(OutcomeInvalid)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.RepeatPairs))
	require.Equal(t, 1, testutil.CollectAndCount(m.GroupSize))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RoundsCommitted.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Code)
	require.Contains(t, string(body), "lunchclub_rounds_committed_total 1")
	require.Contains(t, string(body), "go_goroutines")
}
