package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())

	m.RecordTransaction("DROP")
	m.RecordTransaction("DROP")
	m.RecordTransaction("AUCTION_CLOSE")
	m.RecordBidRejected("BID_TOO_LOW")
	m.RecordTradesInvalidated(3)
	m.RecordDeadlineUnit("END_OF_SEASON", "DONE", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("DROP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("AUCTION_CLOSE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bidsRejected.WithLabelValues("BID_TOO_LOW")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tradesInvalidated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deadlineUnits.WithLabelValues("END_OF_SEASON", "DONE")))
}

func TestPrometheusHandler(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())
	m.RecordTransaction("TRADE_COMPLETION")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `capspace_ledger_transactions_total{type="TRADE_COMPLETION"} 1`)
}

func TestNoOpSatisfiesRecorder(t *testing.T) {
	var r Recorder = NoOp{}
	r.RecordTransaction("DROP")
	r.RecordDeadlineUnit("KEEPER", "FAILED", time.Second)
}
