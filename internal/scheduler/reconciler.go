package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridof79/bappenas-bot/internal/domain"
	"github.com/ridof79/bappenas-bot/internal/metrics"
)

const (
	// DefaultReconcileInterval is how often the full desired timer set is
	// re-derived from storage.
	DefaultReconcileInterval = time.Hour
	// startupSettle delays the first pass until the app has finished wiring.
	startupSettle = 10 * time.Second
)

// ConfigSnapshot lists every active configuration; backed by the cached repo.
type ConfigSnapshot interface {
	GetAllActiveConfigurations(ctx context.Context) ([]domain.Configuration, error)
}

// Reconciler periodically re-derives the desired job set from storage and
// re-installs it through the scheduler, making scheduling self-healing: any
// drift from restarts, missed invalidations or partial failures is corrected
// within one period. It is also the single consumer of the configuration
// change signal, so saves take effect without waiting for the next pass.
type Reconciler struct {
	snap     ConfigSnapshot
	changes  <-chan int64
	sched    *Scheduler
	log      *zap.Logger
	interval time.Duration
}

// NewReconciler builds a reconciler. changes may be nil when no immediate
// reschedule path is wired; correctness never depends on it.
func NewReconciler(snap ConfigSnapshot, changes <-chan int64, sched *Scheduler, log *zap.Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{
		snap:     snap,
		changes:  changes,
		sched:    sched,
		log:      log,
		interval: interval,
	}
}

// Run drives the control loop until ctx is cancelled: one pass shortly after
// start, then one per interval, with change signals handled in between.
func (r *Reconciler) Run(ctx context.Context) {
	initial := time.NewTimer(startupSettle)
	defer initial.Stop()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopping")
			return
		case <-initial.C:
			r.Pass(ctx)
		case <-ticker.C:
			r.Pass(ctx)
		case chatID := <-r.changes:
			// Latency optimization only; the periodic pass is authoritative.
			if err := r.sched.Schedule(ctx, chatID); err != nil {
				r.log.Error("reschedule after config change failed",
					zap.Error(err), zap.Int64("chatID", chatID))
			}
		}
	}
}

// Pass performs one reconciliation: read all active configurations, group
// them by chat, re-install each group's timers and tear down timers of groups
// that no longer have any active configuration. After one pass the live timer
// set matches the set derivable from storage, with no extras and no
// omissions. A failure for one group never halts the others.
func (r *Reconciler) Pass(ctx context.Context) {
	runID := uuid.NewString()

	configs, err := r.snap.GetAllActiveConfigurations(ctx)
	if err != nil {
		r.log.Error("reconcile: read configurations failed",
			zap.Error(err), zap.String("runID", runID))
		return
	}

	byChat := make(map[int64]int)
	for _, cfg := range configs {
		byChat[cfg.ChatID]++
	}

	failed := 0
	for chatID := range byChat {
		if err := r.sched.Schedule(ctx, chatID); err != nil {
			failed++
			r.log.Error("reconcile: schedule group failed",
				zap.Error(err), zap.Int64("chatID", chatID), zap.String("runID", runID))
		}
	}

	// Groups whose configurations all went inactive still hold timers from
	// earlier passes; drop them so their goroutines do not linger.
	live := make(map[int64]bool)
	for key := range r.sched.Snapshot() {
		live[key.ChatID] = true
	}
	removed := 0
	for chatID := range live {
		if byChat[chatID] == 0 {
			r.sched.Unschedule(chatID)
			removed++
		}
	}

	metrics.ReconcilePasses.Inc()
	r.log.Info("reconcile pass complete",
		zap.String("runID", runID),
		zap.Int("groups", len(byChat)),
		zap.Int("configurations", len(configs)),
		zap.Int("removed", removed),
		zap.Int("failed", failed),
	)
}
