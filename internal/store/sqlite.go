package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteRepo implements Repo on an embedded SQLite database.
type SQLiteRepo struct{ db *sqlx.DB }

// OpenSQLite opens (or creates) the database at path, applies PRAGMAs, runs
// the embedded goose migrations and returns a ready repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; a bounded pool keeps concurrent fire handlers,
	// the reconciler and external writers from tripping over each other.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// UpsertGroup inserts a group or refreshes its title/type/active flag.
func (r *SQLiteRepo) UpsertGroup(ctx context.Context, g domain.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_groups (chat_id, chat_title, chat_type, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			chat_title = excluded.chat_title,
			chat_type  = excluded.chat_type,
			is_active  = excluded.is_active`,
		g.ChatID, g.Title, g.Type, boolToInt(g.Active),
	)
	if err != nil {
		return fmt.Errorf("upsert group %d: %w", g.ChatID, err)
	}
	return nil
}

// GetGroup returns a group by chat id, or (nil, nil) if unknown.
func (r *SQLiteRepo) GetGroup(ctx context.Context, chatID int64) (*domain.Group, error) {
	var row groupRow
	err := r.db.GetContext(ctx, &row, `
		SELECT chat_id, chat_title, chat_type, is_active, created_at
		FROM chat_groups
		WHERE chat_id = ?`,
		chatID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", chatID, err)
	}
	g := row.toDomain()
	return &g, nil
}

// SetGroupActive toggles a group's active flag. Groups are never deleted.
func (r *SQLiteRepo) SetGroupActive(ctx context.Context, chatID int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE chat_groups SET is_active = ? WHERE chat_id = ?`,
		boolToInt(active), chatID,
	)
	if err != nil {
		return fmt.Errorf("set group %d active=%v: %w", chatID, active, err)
	}
	return nil
}

// ListGroups returns all known groups, newest first.
func (r *SQLiteRepo) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var rows []groupRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT chat_id, chat_title, chat_type, is_active, created_at
		FROM chat_groups
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// RecordAttendance inserts one ledger row. A UNIQUE violation on the
// (chat, user, event, date) key is the expected repeat-tap outcome and is
// reported as (false, nil); the stored first record is never overwritten.
func (r *SQLiteRepo) RecordAttendance(ctx context.Context, rec domain.AttendanceRecord) (bool, error) {
	dateKey := rec.DateOnly
	if dateKey == "" {
		dateKey = DateKey(rec.ClockTime)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (chat_id, user_id, user_name, username, clock_type, clock_time, date_only)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ChatID, rec.UserID, rec.UserName, rec.Username,
		rec.Type.ClockCode(), formatStoredTime(rec.ClockTime), dateKey,
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("record attendance chat %d user %d: %w", rec.ChatID, rec.UserID, err)
	}
	return true, nil
}

// GetDayAttendance returns the day's records partitioned by event type.
func (r *SQLiteRepo) GetDayAttendance(ctx context.Context, chatID int64, dateKey string) (domain.DaySummary, error) {
	var rows []attendanceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, user_name, username, clock_type, clock_time
		FROM attendance
		WHERE chat_id = ? AND date_only = ?
		ORDER BY clock_time`,
		chatID, dateKey,
	)
	if err != nil {
		return domain.DaySummary{}, fmt.Errorf("day attendance chat %d %s: %w", chatID, dateKey, err)
	}
	summary := domain.NewDaySummary()
	for _, row := range rows {
		event, ok := domain.EventTypeFromClockCode(row.ClockType)
		if !ok {
			continue
		}
		summary.ByType(event)[row.UserID] = row.toEntry()
	}
	return summary, nil
}

// SaveConfiguration upserts the configuration for its (chat, event) key.
// Validation happens before this call, in domain.NewConfiguration.
func (r *SQLiteRepo) SaveConfiguration(ctx context.Context, cfg domain.Configuration) error {
	days, err := json.Marshal(cfg.Days)
	if err != nil {
		return fmt.Errorf("marshal enabled days: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO configurations
			(chat_id, config_type, start_time, end_time, reminder_interval, enabled_days, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id, config_type) DO UPDATE SET
			start_time        = excluded.start_time,
			end_time          = excluded.end_time,
			reminder_interval = excluded.reminder_interval,
			enabled_days      = excluded.enabled_days,
			is_active         = excluded.is_active,
			updated_at        = CURRENT_TIMESTAMP`,
		cfg.ChatID, string(cfg.Type), cfg.Start.String(), cfg.End.String(),
		cfg.Interval, string(days), boolToInt(cfg.Active),
	)
	if err != nil {
		return fmt.Errorf("save configuration chat %d %s: %w", cfg.ChatID, cfg.Type, err)
	}
	return nil
}

// GetConfiguration returns the configuration for the key, or (nil, nil).
func (r *SQLiteRepo) GetConfiguration(ctx context.Context, chatID int64, event domain.EventType) (*domain.Configuration, error) {
	var row configRow
	err := r.db.GetContext(ctx, &row, `
		SELECT chat_id, config_type, start_time, end_time, reminder_interval,
		       enabled_days, is_active, created_at, updated_at
		FROM configurations
		WHERE chat_id = ? AND config_type = ?`,
		chatID, string(event),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get configuration chat %d %s: %w", chatID, event, err)
	}
	cfg, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetAllActiveConfigurations returns every active configuration.
func (r *SQLiteRepo) GetAllActiveConfigurations(ctx context.Context) ([]domain.Configuration, error) {
	var rows []configRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT chat_id, config_type, start_time, end_time, reminder_interval,
		       enabled_days, is_active, created_at, updated_at
		FROM configurations
		WHERE is_active = 1
		ORDER BY chat_id, config_type`)
	if err != nil {
		return nil, fmt.Errorf("all active configurations: %w", err)
	}
	out := make([]domain.Configuration, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.toDomain()
		if err != nil {
			// One malformed row must not halt scheduling for other groups.
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}

var _ Repo = (*SQLiteRepo)(nil)
