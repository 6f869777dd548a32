package domain

import "time"

// InWindow reports whether now falls on an enabled weekday and inside the
// configuration's time range. Both ends are inclusive at minute boundaries:
// 09:00:00 is inside a window ending at 09:00, 09:00:01 is not.
func InWindow(cfg Configuration, now time.Time) bool {
	if !cfg.Days.Has(WeekdayIndex(now)) {
		return false
	}
	sec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return int(cfg.Start)*60 <= sec && sec <= int(cfg.End)*60
}

// Suppressed applies the fire-time suppression rule: a clock-in reminder is
// withheld once anyone in the group has clocked in today, while clock-out
// reminders always go out. The asymmetry is intentional product behavior;
// do not extend it to other event types without confirmation.
func Suppressed(event EventType, today DaySummary) bool {
	if event != ClockIn {
		return false
	}
	return len(today.ClockIn) > 0
}
