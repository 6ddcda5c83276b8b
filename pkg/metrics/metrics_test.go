package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordVerdict(t *testing.T) {
	before := testutil.ToFloat64(PlausibilityVerdictsTotal.WithLabelValues("test", "implausible"))

	RecordVerdict("test", true, []string{"Duration exceeds 24 hours"})

	if got := testutil.ToFloat64(PlausibilityVerdictsTotal.WithLabelValues("test", "implausible")); got != before+1 {
		t.Fatalf("implausible verdicts = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(PlausibilityReasonsTotal.WithLabelValues("test", "Duration exceeds 24 hours")); got < 1 {
		t.Fatalf("reason counter not incremented")
	}
}

func TestRecordDatabaseQuery(t *testing.T) {
	RecordDatabaseQuery("test", "insert_route", errors.New("x"), 0)

	if got := testutil.ToFloat64(DatabaseQueriesTotal.WithLabelValues("test", "insert_route", "error")); got != 1 {
		t.Fatalf("error queries = %v, want 1", got)
	}
}
