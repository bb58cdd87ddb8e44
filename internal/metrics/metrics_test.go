package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Submission(ResultAccepted)
	m.Submission(ResultAccepted)
	m.Submission(ResultOutside)
	m.Logins.WithLabelValues("admin", ResultSuccess).Inc()

	if got := testutil.ToFloat64(m.Submissions.WithLabelValues(ResultAccepted)); got != 2 {
		t.Fatalf("expected 2 accepted submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.Submissions.WithLabelValues(ResultOutside)); got != 1 {
		t.Fatalf("expected 1 geofence rejection, got %v", got)
	}
	if n := testutil.CollectAndCount(m.Logins); n != 1 {
		t.Fatalf("expected one login series, got %d", n)
	}

	// A second registry gets its own set of counters.
	if New(prometheus.NewRegistry()) == nil {
		t.Fatalf("expected metrics")
	}
}
