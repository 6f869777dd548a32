package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

// countingRepo counts storage reads so tests can observe cache behavior.
type countingRepo struct {
	Repo
	gets int
	alls int
}

func (r *countingRepo) GetConfiguration(ctx context.Context, chatID int64, event domain.EventType) (*domain.Configuration, error) {
	r.gets++
	return r.Repo.GetConfiguration(ctx, chatID, event)
}

func (r *countingRepo) GetAllActiveConfigurations(ctx context.Context) ([]domain.Configuration, error) {
	r.alls++
	return r.Repo.GetAllActiveConfigurations(ctx)
}

func newTestCache(t *testing.T) (*CachedRepo, *countingRepo, *time.Time) {
	t.Helper()
	counting := &countingRepo{Repo: openTestRepo(t)}
	cached := NewCachedRepo(counting)
	now := time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC)
	clock := &now
	cached.now = func() time.Time { return *clock }
	return cached, counting, clock
}

func mustConfig(t *testing.T, chatID int64, event domain.EventType, start, end string, interval int) domain.Configuration {
	t.Helper()
	cfg, err := domain.NewConfiguration(chatID, event, start, end, interval, domain.DefaultDays())
	require.NoError(t, err)
	return cfg
}

func TestCache_HitWithinTTL(t *testing.T) {
	cached, counting, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockIn, "08:00", "09:00", 30)))

	for i := 0; i < 3; i++ {
		cfg, err := cached.GetConfiguration(ctx, 100, domain.ClockIn)
		require.NoError(t, err)
		require.NotNil(t, cfg)
	}
	require.Equal(t, 1, counting.gets, "repeat reads inside the TTL must be served from cache")

	*clock = clock.Add(ConfigTTL + time.Second)
	_, err := cached.GetConfiguration(ctx, 100, domain.ClockIn)
	require.NoError(t, err)
	require.Equal(t, 2, counting.gets, "expired entry must be re-read from storage")
}

func TestCache_NegativeCaching(t *testing.T) {
	cached, counting, _ := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cfg, err := cached.GetConfiguration(ctx, 555, domain.ClockOut)
		require.NoError(t, err)
		require.Nil(t, cfg)
	}
	require.Equal(t, 1, counting.gets, "absence must be cached too")
}

func TestCache_SaveInvalidates(t *testing.T) {
	cached, _, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockIn, "08:00", "09:00", 30)))
	cfg, err := cached.GetConfiguration(ctx, 100, domain.ClockIn)
	require.NoError(t, err)
	require.Equal(t, domain.MinuteOfDay(8*60), cfg.Start)

	// A save immediately followed by a read never returns pre-save data.
	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockIn, "07:30", "10:00", 20)))
	cfg, err = cached.GetConfiguration(ctx, 100, domain.ClockIn)
	require.NoError(t, err)
	require.Equal(t, domain.MinuteOfDay(7*60+30), cfg.Start)
	require.Equal(t, 20, cfg.Interval)
}

func TestCache_SaveInvalidatesAllSnapshot(t *testing.T) {
	cached, counting, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockIn, "08:00", "09:00", 30)))
	all, err := cached.GetAllActiveConfigurations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 200, domain.ClockOut, "16:00", "18:00", 15)))
	all, err = cached.GetAllActiveConfigurations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, 2, counting.alls)
}

func TestCache_AllSnapshotRefreshesPerKeyEntries(t *testing.T) {
	cached, counting, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockIn, "08:00", "09:00", 30)))
	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockOut, "16:00", "18:00", 15)))

	_, err := cached.GetAllActiveConfigurations(ctx)
	require.NoError(t, err)

	// Both per-key lookups ride on the snapshot's refresh.
	_, err = cached.GetConfiguration(ctx, 100, domain.ClockIn)
	require.NoError(t, err)
	_, err = cached.GetConfiguration(ctx, 100, domain.ClockOut)
	require.NoError(t, err)
	require.Equal(t, 0, counting.gets)
}

func TestCache_ChangeSignal(t *testing.T) {
	cached, _, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cached.SaveConfiguration(ctx, mustConfig(t, 100, domain.ClockIn, "08:00", "09:00", 30)))

	select {
	case chatID := <-cached.Changes():
		require.Equal(t, int64(100), chatID)
	default:
		t.Fatal("expected a change signal after save")
	}
}

func TestCache_ChangeSignalNeverBlocks(t *testing.T) {
	cached, _, _ := newTestCache(t)
	ctx := context.Background()

	// Nobody drains the channel; saves beyond its capacity must still succeed.
	for i := 0; i < 200; i++ {
		cfg := mustConfig(t, int64(i+1), domain.ClockIn, "08:00", "09:00", 30)
		require.NoError(t, cached.SaveConfiguration(ctx, cfg))
	}
}
