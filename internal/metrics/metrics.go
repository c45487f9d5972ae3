// Package metrics exposes Prometheus counters for certificate sessions.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-certgen/pkg/notify"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeIncomplete = "incomplete"
	OutcomeFailure    = "failure"
)

// Metrics tracks field edits, generations, exports and notifications.
type Metrics struct {
	FieldChanges  *prometheus.CounterVec
	Generations   *prometheus.CounterVec
	Exports       *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

// New registers the certgen metrics on reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FieldChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certgen_field_changes_total",
			Help: "Field edits dispatched through the session",
		}, []string{"field"}),
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certgen_generations_total",
			Help: "Generate requests by outcome",
		}, []string{"outcome"}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certgen_exports_total",
			Help: "Export requests by outcome",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certgen_notifications_total",
			Help: "Notifications shown by severity",
		}, []string{"severity"}),
	}
}

// IncrementFieldChange records an accepted field edit.
func (m *Metrics) IncrementFieldChange(field string) {
	m.FieldChanges.WithLabelValues(field).Inc()
}

// IncrementGeneration records a generate attempt.
func (m *Metrics) IncrementGeneration(outcome string) {
	m.Generations.WithLabelValues(outcome).Inc()
}

// IncrementExport records an export attempt.
func (m *Metrics) IncrementExport(outcome string) {
	m.Exports.WithLabelValues(outcome).Inc()
}

// Notifier wraps next so every notification is counted by severity.
func (m *Metrics) Notifier(next notify.Notifier) notify.Notifier {
	return notify.NotifierFunc(func(ctx context.Context, message string, severity notify.Severity) {
		m.Notifications.WithLabelValues(string(severity)).Inc()
		if next != nil {
			next.Notify(ctx, message, severity)
		}
	})
}
