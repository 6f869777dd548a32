package domain

import (
	"sort"
	"time"
)

// EventType distinguishes the two attendance actions a group tracks.
// The values are the configuration codes persisted in storage.
type EventType string

const (
	ClockIn  EventType = "clock_in"
	ClockOut EventType = "clock_out"
)

// EventTypes lists both event types in a stable order.
var EventTypes = []EventType{ClockIn, ClockOut}

// ClockCode returns the short attendance-row code ("in"/"out") for the event.
func (e EventType) ClockCode() string {
	if e == ClockOut {
		return "out"
	}
	return "in"
}

// EventTypeFromClockCode maps an attendance-row code back to its event type.
func EventTypeFromClockCode(code string) (EventType, bool) {
	switch code {
	case "in":
		return ClockIn, true
	case "out":
		return ClockOut, true
	}
	return "", false
}

// Valid reports whether e is one of the two known event types.
func (e EventType) Valid() bool {
	return e == ClockIn || e == ClockOut
}

// Group is a chat whose members' attendance is tracked. Groups are created on
// first registration and deactivated rather than deleted.
type Group struct {
	ChatID    int64
	Title     string
	Type      string // private|group|supergroup
	Active    bool
	CreatedAt time.Time
}

// Configuration is the per-(group, event type) reminder schedule.
// At most one exists per key; saves are upserts.
type Configuration struct {
	ChatID    int64
	Type      EventType
	Start     MinuteOfDay
	End       MinuteOfDay
	Interval  int // minutes between reminders, 1..1440
	Days      DaySet
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Default window values applied when a group registers without explicit setup.
const (
	DefaultClockInStart  = MinuteOfDay(7 * 60)
	DefaultClockInEnd    = MinuteOfDay(9 * 60)
	DefaultClockOutStart = MinuteOfDay(16 * 60)
	DefaultClockOutEnd   = MinuteOfDay(18 * 60)
	DefaultInterval      = 15
)

// DefaultDays is Monday through Friday.
func DefaultDays() DaySet { return DaySet{0, 1, 2, 3, 4} }

// DefaultConfiguration builds the stock configuration for a group and event type.
func DefaultConfiguration(chatID int64, event EventType) Configuration {
	cfg := Configuration{
		ChatID:   chatID,
		Type:     event,
		Start:    DefaultClockInStart,
		End:      DefaultClockInEnd,
		Interval: DefaultInterval,
		Days:     DefaultDays(),
		Active:   true,
	}
	if event == ClockOut {
		cfg.Start = DefaultClockOutStart
		cfg.End = DefaultClockOutEnd
	}
	return cfg
}

// AttendanceRecord is one clock-in or clock-out event. Exactly one exists per
// (chat, user, event, date); the ledger is append-only.
type AttendanceRecord struct {
	ChatID    int64
	UserID    int64
	UserName  string
	Username  string // optional handle, without "@"
	Type      EventType
	ClockTime time.Time
	DateOnly  string // YYYY-MM-DD in the bot's timezone
}

// Entry is a single user's record inside a day summary.
type Entry struct {
	UserID   int64
	Name     string
	Username string
	At       time.Time
}

// DaySummary partitions one calendar day's attendance by event type.
type DaySummary struct {
	ClockIn  map[int64]Entry
	ClockOut map[int64]Entry
}

// NewDaySummary returns an empty summary with both maps allocated.
func NewDaySummary() DaySummary {
	return DaySummary{
		ClockIn:  make(map[int64]Entry),
		ClockOut: make(map[int64]Entry),
	}
}

// ByType returns the partition for the given event type.
func (s DaySummary) ByType(e EventType) map[int64]Entry {
	if e == ClockOut {
		return s.ClockOut
	}
	return s.ClockIn
}

// PendingOut lists users who clocked in today but have not clocked out,
// ordered by clock-in time. Used as the mention list on clock-out reminders.
func (s DaySummary) PendingOut() []Entry {
	var out []Entry
	for id, e := range s.ClockIn {
		if _, done := s.ClockOut[id]; !done {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
