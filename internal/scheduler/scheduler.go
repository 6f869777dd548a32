package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ridof79/bappenas-bot/internal/domain"
	"github.com/ridof79/bappenas-bot/internal/metrics"
	"github.com/ridof79/bappenas-bot/internal/store"
)

// fireTimeout bounds the storage and gateway I/O of a single fire handler.
const fireTimeout = 30 * time.Second

// ConfigSource is the subset of the store the scheduler reads configurations
// through. In production this is the TTL-cached repo.
type ConfigSource interface {
	GetConfiguration(ctx context.Context, chatID int64, event domain.EventType) (*domain.Configuration, error)
}

// Ledger answers "who has clocked in/out today"; always fresh, never cached.
type Ledger interface {
	GetDayAttendance(ctx context.Context, chatID int64, dateKey string) (domain.DaySummary, error)
}

// JobKey identifies one installed timer.
type JobKey struct {
	ChatID     int64
	Event      domain.EventType
	Kind       FireKind
	Occurrence int // plan index for reminders, 0 for the opening message
}

type job struct {
	at     domain.MinuteOfDay
	cancel context.CancelFunc
}

// Scheduler owns the live timer set. All mutation goes through Schedule and
// Unschedule; there is no ambient global job state. Timers for different
// groups fire concurrently; each fire handler does its own I/O.
type Scheduler struct {
	cfgs       ConfigSource
	ledger     Ledger
	dispatcher Dispatcher
	log        *zap.Logger
	loc        *time.Location

	// now is swapped in tests to pin fire-time decisions.
	now func() time.Time

	mu   sync.Mutex
	jobs map[JobKey]*job
}

// New creates a Scheduler. loc is the timezone all windows and ledger dates
// are evaluated in.
func New(cfgs ConfigSource, ledger Ledger, dispatcher Dispatcher, log *zap.Logger, loc *time.Location) *Scheduler {
	return &Scheduler{
		cfgs:       cfgs,
		ledger:     ledger,
		dispatcher: dispatcher,
		log:        log,
		loc:        loc,
		now:        time.Now,
		jobs:       make(map[JobKey]*job),
	}
}

// Schedule re-installs the full timer set for one group: read both
// configurations, expand each into its daily plan, cancel whatever the group
// had before and install the new set. Repeated calls with an unchanged
// configuration are idempotent. Cancellation happens before replacement,
// under the registry lock; a handler that already started runs to completion.
func (s *Scheduler) Schedule(ctx context.Context, chatID int64) error {
	type plannedJob struct {
		key JobKey
		at  domain.MinuteOfDay
	}
	var desired []plannedJob
	for _, event := range domain.EventTypes {
		cfg, err := s.cfgs.GetConfiguration(ctx, chatID, event)
		if err != nil {
			return err
		}
		if cfg == nil || !cfg.Active {
			continue
		}
		desired = append(desired, plannedJob{JobKey{ChatID: chatID, Event: event, Kind: Opening}, cfg.Start})
		for i, at := range domain.Plan(*cfg) {
			desired = append(desired, plannedJob{JobKey{ChatID: chatID, Event: event, Kind: Reminder, Occurrence: i}, at})
		}
	}

	s.mu.Lock()
	s.cancelGroupLocked(chatID)
	for _, d := range desired {
		s.installLocked(d.key, d.at)
	}
	installed := len(desired)
	s.mu.Unlock()

	s.log.Info("group schedule installed",
		zap.Int64("chatID", chatID),
		zap.Int("timers", installed),
	)
	return nil
}

// Unschedule cancels every timer the group owns, for example when the bot
// loses administrative rights in the chat.
func (s *Scheduler) Unschedule(chatID int64) {
	s.mu.Lock()
	removed := s.cancelGroupLocked(chatID)
	s.mu.Unlock()

	s.log.Info("group schedule removed",
		zap.Int64("chatID", chatID),
		zap.Int("timers", removed),
	)
}

// Stop cancels every timer. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, j := range s.jobs {
		j.cancel()
		delete(s.jobs, key)
	}
}

// Snapshot returns the current timer set with each job's daily fire time.
func (s *Scheduler) Snapshot() map[JobKey]domain.MinuteOfDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[JobKey]domain.MinuteOfDay, len(s.jobs))
	for key, j := range s.jobs {
		out[key] = j.at
	}
	return out
}

func (s *Scheduler) cancelGroupLocked(chatID int64) int {
	removed := 0
	for key, j := range s.jobs {
		if key.ChatID == chatID {
			j.cancel()
			delete(s.jobs, key)
			removed++
		}
	}
	return removed
}

func (s *Scheduler) installLocked(key JobKey, at domain.MinuteOfDay) {
	ctx, cancel := context.WithCancel(context.Background())
	s.jobs[key] = &job{at: at, cancel: cancel}
	go s.runJob(ctx, key, at)
}

// runJob sleeps until the next daily occurrence of its fire time, fires,
// and re-arms for the following day until cancelled.
func (s *Scheduler) runJob(ctx context.Context, key JobKey, at domain.MinuteOfDay) {
	for {
		timer := time.NewTimer(s.untilNext(at))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.fire(key)
		}
	}
}

func (s *Scheduler) untilNext(at domain.MinuteOfDay) time.Duration {
	now := s.now().In(s.loc)
	next := at.At(now)
	if !next.After(now) {
		next = at.At(now.AddDate(0, 0, 1))
	}
	return next.Sub(now)
}

// fire runs one scheduled trigger: gate on the time window, apply the
// suppression rule against today's ledger, then dispatch the structured
// payload. Nothing here is fatal; a failed dispatch is retried only on the
// next natural fire.
func (s *Scheduler) fire(key JobKey) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	now := s.now().In(s.loc)

	cfg, err := s.cfgs.GetConfiguration(ctx, key.ChatID, key.Event)
	if err != nil {
		s.log.Error("fire: read configuration failed",
			zap.Error(err), zap.Int64("chatID", key.ChatID), zap.String("event", string(key.Event)))
		return
	}
	if cfg == nil || !cfg.Active {
		return
	}
	if !domain.InWindow(*cfg, now) {
		return
	}

	summary, err := s.ledger.GetDayAttendance(ctx, key.ChatID, store.DateKey(now))
	if err != nil {
		// Documented degrade: on a ledger read failure assume nobody has
		// recorded yet and let the reminder go out. Never the other way.
		s.log.Error("fire: ledger read failed, assuming no attendance",
			zap.Error(err), zap.Int64("chatID", key.ChatID))
		summary = domain.NewDaySummary()
	}

	if domain.Suppressed(key.Event, summary) {
		metrics.RemindersSuppressed.WithLabelValues(string(key.Event)).Inc()
		s.log.Debug("fire suppressed",
			zap.Int64("chatID", key.ChatID), zap.String("event", string(key.Event)))
		return
	}

	payload := Payload{
		ChatID:     key.ChatID,
		Event:      key.Event,
		Kind:       key.Kind,
		At:         now,
		ClockedIn:  len(summary.ClockIn),
		ClockedOut: len(summary.ClockOut),
	}
	if key.Event == domain.ClockOut && key.Kind == Reminder {
		payload.Pending = summary.PendingOut()
	}

	if err := s.dispatcher.Send(key.ChatID, payload); err != nil {
		metrics.DispatchErrors.Inc()
		s.log.Error("fire: dispatch failed",
			zap.Error(err), zap.Int64("chatID", key.ChatID), zap.String("event", string(key.Event)))
		return
	}
	metrics.RemindersSent.WithLabelValues(string(key.Event), string(key.Kind)).Inc()
}
