package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-certgen/internal/metrics"
	"github.com/goliatone/go-certgen/pkg/notify"
)

func TestCountersAreIsolatedPerRegistry(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	other := metrics.New(prometheus.NewRegistry())

	m.IncrementFieldChange("fullName")
	m.IncrementFieldChange("fullName")
	m.IncrementGeneration(metrics.OutcomeIncomplete)
	m.IncrementExport(metrics.OutcomeFailure)

	if got := testutil.ToFloat64(m.FieldChanges.WithLabelValues("fullName")); got != 2 {
		t.Fatalf("field changes = %v", got)
	}
	if got := testutil.ToFloat64(m.Generations.WithLabelValues(metrics.OutcomeIncomplete)); got != 1 {
		t.Fatalf("generations = %v", got)
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues(metrics.OutcomeFailure)); got != 1 {
		t.Fatalf("exports = %v", got)
	}
	if got := testutil.ToFloat64(other.FieldChanges.WithLabelValues("fullName")); got != 0 {
		t.Fatalf("registries should not share counters, got %v", got)
	}
}

func TestNotifierCountsAndForwards(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	var forwarded []string
	next := notify.NotifierFunc(func(_ context.Context, message string, _ notify.Severity) {
		forwarded = append(forwarded, message)
	})

	n := m.Notifier(next)
	n.Notify(context.Background(), "a", notify.SeverityError)
	n.Notify(context.Background(), "b", notify.SeverityError)
	m.Notifier(nil).Notify(context.Background(), "c", notify.SeveritySuccess)

	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("error")); got != 2 {
		t.Fatalf("error notifications = %v", got)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("success")); got != 1 {
		t.Fatalf("success notifications = %v", got)
	}
	if len(forwarded) != 2 {
		t.Fatalf("expected two forwarded notifications, got %v", forwarded)
	}
}
