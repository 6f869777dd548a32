package domain

import (
	"errors"
	"testing"
)

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in   string
		want MinuteOfDay
		ok   bool
	}{
		{"07:00", 7 * 60, true},
		{"23:59", 23*60 + 59, true},
		{"00:00", 0, true},
		{" 9:05 ", 9*60 + 5, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"12", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseHHMM(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("%q: want %d, got %d err %v", c.in, c.want, got, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%q: expected error", c.in)
		}
	}
}

func TestMinuteOfDayString(t *testing.T) {
	if s := MinuteOfDay(7*60 + 5).String(); s != "07:05" {
		t.Fatalf("want 07:05, got %s", s)
	}
}

func TestNewConfiguration_Valid(t *testing.T) {
	cfg, err := NewConfiguration(10, ClockIn, "08:00", "09:00", 30, DaySet{4, 0, 0, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Start != 8*60 || cfg.End != 9*60 || cfg.Interval != 30 || !cfg.Active {
		t.Fatalf("bad config: %+v", cfg)
	}
	// Days come back normalized: sorted, deduplicated.
	want := DaySet{0, 2, 4}
	if len(cfg.Days) != len(want) {
		t.Fatalf("days not normalized: %v", cfg.Days)
	}
	for i := range want {
		if cfg.Days[i] != want[i] {
			t.Fatalf("days not normalized: %v", cfg.Days)
		}
	}
}

func TestNewConfiguration_ZeroIntervalTruncated(t *testing.T) {
	cfg, err := NewConfiguration(10, ClockOut, "16:00", "18:00", 0, DefaultDays())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Interval != 1 {
		t.Fatalf("want interval 1, got %d", cfg.Interval)
	}
}

func TestNewConfiguration_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		interval int
		days     DaySet
		sentinel error
	}{
		{"bad start", "7am", "09:00", 30, DefaultDays(), ErrBadTimeFormat},
		{"bad end", "07:00", "25:00", 30, DefaultDays(), ErrBadTimeFormat},
		{"inverted range", "09:00", "07:00", 30, DefaultDays(), ErrBadTimeRange},
		{"equal range", "09:00", "09:00", 30, DefaultDays(), ErrBadTimeRange},
		{"negative interval", "07:00", "09:00", -5, DefaultDays(), ErrBadInterval},
		{"huge interval", "07:00", "09:00", 1441, DefaultDays(), ErrBadInterval},
		{"empty days", "07:00", "09:00", 30, DaySet{}, ErrBadDays},
		{"day out of range", "07:00", "09:00", 30, DaySet{0, 7}, ErrBadDays},
	}
	for _, c := range cases {
		_, err := NewConfiguration(10, ClockIn, c.start, c.end, c.interval, c.days)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !errors.Is(err, c.sentinel) {
			t.Errorf("%s: want %v, got %v", c.name, c.sentinel, err)
		}
	}
}

func TestEventTypeCodes(t *testing.T) {
	if ClockIn.ClockCode() != "in" || ClockOut.ClockCode() != "out" {
		t.Fatal("clock codes wrong")
	}
	if e, ok := EventTypeFromClockCode("out"); !ok || e != ClockOut {
		t.Fatal("clock code round-trip failed")
	}
	if _, ok := EventTypeFromClockCode("sideways"); ok {
		t.Fatal("unknown code accepted")
	}
}
