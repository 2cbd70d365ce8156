package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CampaignsTotal.WithLabelValues("simulated").Inc()
	m.CampaignsTotal.WithLabelValues("real").Inc()
	m.CampaignsTotal.WithLabelValues("real").Inc()
	m.ContactsSentTotal.Add(5)
	m.ContactsFailedTotal.Add(2)
	m.RelayRequestsTotal.WithLabelValues("ok").Inc()
	m.DispatchAttemptsTotal.WithLabelValues("direct", "failure").Inc()

	if got := testutil.ToFloat64(m.CampaignsTotal.WithLabelValues("real")); got != 2 {
		t.Errorf("campaigns real = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ContactsSentTotal); got != 5 {
		t.Errorf("contacts sent = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.ContactsFailedTotal); got != 2 {
		t.Errorf("contacts failed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DispatchAttemptsTotal.WithLabelValues("direct", "failure")); got != 1 {
		t.Errorf("dispatch attempts direct/failure = %v, want 1", got)
	}
}

func TestGlobalSetGet(t *testing.T) {
	if Get() != nil {
		t.Error("metrics must be nil until installed")
	}
	m := New()
	Set(m)
	defer Set(nil)
	if Get() != m {
		t.Error("Get() did not return the installed instance")
	}
}
