package domain

import (
	"reflect"
	"testing"
)

func mustMinute(t *testing.T, s string) MinuteOfDay {
	t.Helper()
	m, err := ParseHHMM(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return m
}

func planConfig(t *testing.T, start, end string, interval int) Configuration {
	t.Helper()
	return Configuration{
		ChatID:   1,
		Type:     ClockIn,
		Start:    mustMinute(t, start),
		End:      mustMinute(t, end),
		Interval: interval,
		Days:     DefaultDays(),
		Active:   true,
	}
}

func TestPlan_RegularInterval(t *testing.T) {
	cfg := planConfig(t, "08:00", "09:00", 30)
	got := Plan(cfg)
	want := []MinuteOfDay{8 * 60, 8*60 + 30, 9 * 60}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestPlan_HourRollover(t *testing.T) {
	cfg := planConfig(t, "08:45", "10:00", 40)
	got := Plan(cfg)
	want := []MinuteOfDay{8*60 + 45, 9*60 + 25} // next step 10:05 is past end
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if got[1].String() != "09:25" {
		t.Fatalf("rollover formatting: got %s", got[1])
	}
}

func TestPlan_CappedAtMax(t *testing.T) {
	cfg := planConfig(t, "08:00", "18:00", 1)
	got := Plan(cfg)
	if len(got) != MaxPlanSize {
		t.Fatalf("want %d entries, got %d", MaxPlanSize, len(got))
	}
}

func TestPlan_AllWithinRange(t *testing.T) {
	cases := []struct {
		start, end string
		interval   int
	}{
		{"08:00", "09:00", 30},
		{"07:13", "09:47", 17},
		{"00:00", "23:59", 180},
		{"22:00", "23:30", 45},
	}
	for _, c := range cases {
		cfg := planConfig(t, c.start, c.end, c.interval)
		got := Plan(cfg)
		if len(got) == 0 || len(got) > MaxPlanSize {
			t.Fatalf("%s-%s/%d: bad length %d", c.start, c.end, c.interval, len(got))
		}
		for _, m := range got {
			if m < cfg.Start || m > cfg.End {
				t.Fatalf("%s-%s/%d: %s outside window", c.start, c.end, c.interval, m)
			}
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	cfg := planConfig(t, "07:00", "12:00", 25)
	if !reflect.DeepEqual(Plan(cfg), Plan(cfg)) {
		t.Fatal("two plans of the same config differ")
	}
}

func TestPlan_StartEqualsEnd(t *testing.T) {
	cfg := planConfig(t, "08:00", "08:00", 30)
	got := Plan(cfg)
	if len(got) != 1 || got[0] != 8*60 {
		t.Fatalf("want single 08:00 entry, got %v", got)
	}
}

func TestPlan_IntervalOvershootsEnd(t *testing.T) {
	cfg := planConfig(t, "08:00", "08:10", 60)
	got := Plan(cfg)
	if len(got) != 1 || got[0] != 8*60 {
		t.Fatalf("want single 08:00 entry, got %v", got)
	}
}
