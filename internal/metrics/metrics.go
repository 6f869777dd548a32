// Package metrics exposes the bot's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersSent counts dispatched notifications by event type and fire kind.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_reminders_sent_total",
		Help: "Notifications handed to the messaging gateway.",
	}, []string{"event", "kind"})

	// RemindersSuppressed counts fires withheld by ledger state.
	RemindersSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_reminders_suppressed_total",
		Help: "Scheduled fires suppressed because attendance was already recorded.",
	}, []string{"event"})

	// DispatchErrors counts failed gateway sends. Failures are retried only
	// on the next natural fire.
	DispatchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_dispatch_errors_total",
		Help: "Errors returned by the messaging gateway.",
	})

	// AttendanceRecorded counts accepted ledger inserts by event type.
	AttendanceRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_attendance_recorded_total",
		Help: "Attendance records accepted by the ledger.",
	}, []string{"event"})

	// ReconcilePasses counts completed reconciliation passes.
	ReconcilePasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_reconcile_passes_total",
		Help: "Completed reconciler passes.",
	})
)
