package store

import (
	"context"
	"time"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

// Repo defines storage operations for groups, configurations and the
// attendance ledger.
type Repo interface {
	UpsertGroup(ctx context.Context, g domain.Group) error
	GetGroup(ctx context.Context, chatID int64) (*domain.Group, error)
	SetGroupActive(ctx context.Context, chatID int64, active bool) error
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// RecordAttendance inserts one ledger row. It returns false (with a nil
	// error) when a record for the same (chat, user, event, date) key already
	// exists: the first writer per day wins and repeats are harmless.
	RecordAttendance(ctx context.Context, rec domain.AttendanceRecord) (bool, error)
	// GetDayAttendance always reads storage directly; reminder correctness
	// depends on fresh ledger state, so it is never cached.
	GetDayAttendance(ctx context.Context, chatID int64, dateKey string) (domain.DaySummary, error)

	SaveConfiguration(ctx context.Context, cfg domain.Configuration) error
	// GetConfiguration returns (nil, nil) when no configuration exists for
	// the key.
	GetConfiguration(ctx context.Context, chatID int64, event domain.EventType) (*domain.Configuration, error)
	GetAllActiveConfigurations(ctx context.Context) ([]domain.Configuration, error)

	Close() error
}

// DateKey formats t as the ledger's YYYY-MM-DD partition key. The caller is
// responsible for converting t into the bot's timezone first.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
