package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransaction(t *testing.T) {
	before := testutil.ToFloat64(transactionsTotal.WithLabelValues("pending", "bills"))
	RecordTransaction("pending", "bills", 1000, 25)
	assert.Equal(t, before+1, testutil.ToFloat64(transactionsTotal.WithLabelValues("pending", "bills")))
}

func TestRecordBalanceChange_Direction(t *testing.T) {
	debits := testutil.ToFloat64(balanceChanges.WithLabelValues("agency", "principal", "debit"))
	RecordBalanceChange("agency", "principal", -50)
	assert.Equal(t, debits+1, testutil.ToFloat64(balanceChanges.WithLabelValues("agency", "principal", "debit")))
}

func TestObserveOperation(t *testing.T) {
	ObserveOperation("test_op", time.Now(), errors.New("boom"))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(operationDuration), 1)
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	RecordCacheLookup("hit")
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))
}
