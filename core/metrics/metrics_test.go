package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"commerce-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver(t *testing.T) {
	m := New()

	m.Transition("t", reconcile.StateNotStarted, reconcile.StateFetchingCustomers)
	m.Reconciled("t", reconcile.KindCustomer)
	m.Reconciled("t", reconcile.KindCustomer)
	m.Skipped("t", reconcile.KindProduct, nil)
	m.ObserveRun("completed", 3*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("customer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("FetchingCustomers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Reconciled("t", reconcile.KindOrder)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `commerce_sync_records_reconciled_total{kind="order"} 1`)
}
