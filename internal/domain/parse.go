package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadTimeFormat = errors.New("invalid time, expected HH:MM")
	ErrBadTimeRange  = errors.New("start time must be before end time")
	ErrBadInterval   = errors.New("interval out of range")
	ErrBadDays       = errors.New("enabled days must be a non-empty subset of 0..6")
)

// MinuteOfDay is a time of day as minutes since midnight (0..1439).
type MinuteOfDay int

// ParseHHMM parses "HH:MM" into minutes since midnight.
func ParseHHMM(s string) (MinuteOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	return MinuteOfDay(h*60 + m), nil
}

// String formats the minute as HH:MM.
func (m MinuteOfDay) String() string {
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// At anchors the minute on the given date in its location, at second zero.
func (m MinuteOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), int(m)/60, int(m)%60, 0, 0, day.Location())
}

// DaySet is a set of enabled weekdays, Monday=0 through Sunday=6.
type DaySet []int

// Has reports whether day is enabled.
func (d DaySet) Has(day int) bool {
	for _, v := range d {
		if v == day {
			return true
		}
	}
	return false
}

// Normalize returns the set sorted with duplicates removed.
func (d DaySet) Normalize() DaySet {
	var seen [7]bool
	for _, v := range d {
		if v >= 0 && v <= 6 {
			seen[v] = true
		}
	}
	out := make(DaySet, 0, 7)
	for day := 0; day <= 6; day++ {
		if seen[day] {
			out = append(out, day)
		}
	}
	return out
}

// Validate checks the set is a non-empty subset of 0..6.
func (d DaySet) Validate() error {
	if len(d) == 0 {
		return ErrBadDays
	}
	for _, v := range d {
		if v < 0 || v > 6 {
			return fmt.Errorf("%w: got %d", ErrBadDays, v)
		}
	}
	return nil
}

// WeekdayIndex converts Go's Sunday-based weekday to the stored
// Monday=0..Sunday=6 numbering.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// NewConfiguration validates raw save parameters and builds a Configuration.
// Interval 0 is truncated up to 1; anything outside 0..1440 is rejected.
// Nothing is persisted here; callers own storage and cache invalidation.
func NewConfiguration(chatID int64, event EventType, start, end string, intervalMinutes int, days DaySet) (Configuration, error) {
	var cfg Configuration
	if !event.Valid() {
		return cfg, fmt.Errorf("unknown event type %q", event)
	}
	startM, err := ParseHHMM(start)
	if err != nil {
		return cfg, fmt.Errorf("start: %w", err)
	}
	endM, err := ParseHHMM(end)
	if err != nil {
		return cfg, fmt.Errorf("end: %w", err)
	}
	if startM >= endM {
		return cfg, fmt.Errorf("%w: %s >= %s", ErrBadTimeRange, startM, endM)
	}
	if intervalMinutes < 0 || intervalMinutes > 1440 {
		return cfg, fmt.Errorf("%w: %d", ErrBadInterval, intervalMinutes)
	}
	if intervalMinutes == 0 {
		intervalMinutes = 1
	}
	if err := days.Validate(); err != nil {
		return cfg, err
	}
	return Configuration{
		ChatID:   chatID,
		Type:     event,
		Start:    startM,
		End:      endM,
		Interval: intervalMinutes,
		Days:     days.Normalize(),
		Active:   true,
	}, nil
}
