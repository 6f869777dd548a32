package domain

// MaxPlanSize bounds the number of daily reminders a single configuration can
// produce, so a degenerate interval cannot flood a group's schedule.
const MaxPlanSize = 10

// Plan expands a configuration into its ordered list of daily fire times:
// start, start+interval, ... while the running time stays <= end, capped at
// MaxPlanSize entries. Deterministic for a given configuration.
//
// start == end yields exactly the start entry, as does an interval that
// overshoots end on the first step.
func Plan(cfg Configuration) []MinuteOfDay {
	step := cfg.Interval
	if step < 1 {
		step = 1
	}
	out := make([]MinuteOfDay, 0, MaxPlanSize)
	for t := cfg.Start; t <= cfg.End && len(out) < MaxPlanSize; t += MinuteOfDay(step) {
		out = append(out, t)
	}
	return out
}
