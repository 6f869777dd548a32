package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

// SQLite DATETIME columns hold this layout; parsed as UTC on the way out.
const timeLayout = "2006-01-02 15:04:05"

type groupRow struct {
	ChatID    int64          `db:"chat_id"`
	Title     sql.NullString `db:"chat_title"`
	Type      sql.NullString `db:"chat_type"`
	Active    int            `db:"is_active"`
	CreatedAt string         `db:"created_at"`
}

func (r groupRow) toDomain() domain.Group {
	return domain.Group{
		ChatID:    r.ChatID,
		Title:     r.Title.String,
		Type:      r.Type.String,
		Active:    r.Active != 0,
		CreatedAt: parseStoredTime(r.CreatedAt),
	}
}

type configRow struct {
	ChatID      int64  `db:"chat_id"`
	ConfigType  string `db:"config_type"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
	Interval    int    `db:"reminder_interval"`
	EnabledDays string `db:"enabled_days"`
	Active      int    `db:"is_active"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r configRow) toDomain() (domain.Configuration, error) {
	start, err := domain.ParseHHMM(r.StartTime)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("chat %d %s start_time: %w", r.ChatID, r.ConfigType, err)
	}
	end, err := domain.ParseHHMM(r.EndTime)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("chat %d %s end_time: %w", r.ChatID, r.ConfigType, err)
	}
	var days domain.DaySet
	if err := json.Unmarshal([]byte(r.EnabledDays), &days); err != nil {
		return domain.Configuration{}, fmt.Errorf("chat %d %s enabled_days: %w", r.ChatID, r.ConfigType, err)
	}
	return domain.Configuration{
		ChatID:    r.ChatID,
		Type:      domain.EventType(r.ConfigType),
		Start:     start,
		End:       end,
		Interval:  r.Interval,
		Days:      days,
		Active:    r.Active != 0,
		CreatedAt: parseStoredTime(r.CreatedAt),
		UpdatedAt: parseStoredTime(r.UpdatedAt),
	}, nil
}

type attendanceRow struct {
	UserID    int64          `db:"user_id"`
	UserName  string         `db:"user_name"`
	Username  sql.NullString `db:"username"`
	ClockType string         `db:"clock_type"`
	ClockTime string         `db:"clock_time"`
}

func (r attendanceRow) toEntry() domain.Entry {
	return domain.Entry{
		UserID:   r.UserID,
		Name:     r.UserName,
		Username: r.Username.String,
		At:       parseStoredTime(r.ClockTime),
	}
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
