package store

import (
	"context"
	"sync"
	"time"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

// ConfigTTL is how long cached configuration reads stay valid.
const ConfigTTL = 5 * time.Minute

type configKey struct {
	ChatID int64
	Type   domain.EventType
}

// cacheEntry holds one cached lookup result. Config is nil for a cached
// "absent" answer, which saves repeated storage round-trips for groups that
// never configured an event type.
type cacheEntry struct {
	cfg       *domain.Configuration
	fetchedAt time.Time
}

// CachedRepo wraps a Repo with a TTL cache over configuration reads and a
// change signal emitted after successful saves. Attendance and group
// operations pass straight through; the ledger is never cached.
//
// The cache maps are the only shared mutable state here and every access
// goes through one mutex. Storage I/O happens outside the lock.
type CachedRepo struct {
	Repo

	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	configs  map[configKey]cacheEntry
	all      []domain.Configuration
	allAt    time.Time
	allValid bool

	changes chan int64
}

// NewCachedRepo wraps repo with the standard TTL.
func NewCachedRepo(repo Repo) *CachedRepo {
	return &CachedRepo{
		Repo:    repo,
		ttl:     ConfigTTL,
		now:     time.Now,
		configs: make(map[configKey]cacheEntry),
		changes: make(chan int64, 64),
	}
}

// Changes delivers the chat id of each successfully saved configuration.
// The channel is a latency optimization only: sends never block, and a
// dropped signal is recovered by the next reconciler pass.
func (c *CachedRepo) Changes() <-chan int64 {
	return c.changes
}

// SaveConfiguration validates nothing itself (see domain.NewConfiguration);
// it persists the configuration, invalidates both the per-key entry and the
// all-active snapshot, then emits the change signal.
func (c *CachedRepo) SaveConfiguration(ctx context.Context, cfg domain.Configuration) error {
	if err := c.Repo.SaveConfiguration(ctx, cfg); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.configs, configKey{ChatID: cfg.ChatID, Type: cfg.Type})
	c.all = nil
	c.allValid = false
	c.mu.Unlock()

	select {
	case c.changes <- cfg.ChatID:
	default:
	}
	return nil
}

// GetConfiguration serves from cache within the TTL, including cached
// absence; a miss reads storage and repopulates the entry.
func (c *CachedRepo) GetConfiguration(ctx context.Context, chatID int64, event domain.EventType) (*domain.Configuration, error) {
	key := configKey{ChatID: chatID, Type: event}

	c.mu.Lock()
	if e, ok := c.configs[key]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		cfg := cloneConfig(e.cfg)
		c.mu.Unlock()
		return cfg, nil
	}
	c.mu.Unlock()

	cfg, err := c.Repo.GetConfiguration(ctx, chatID, event)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.configs[key] = cacheEntry{cfg: cloneConfig(cfg), fetchedAt: c.now()}
	c.mu.Unlock()
	return cfg, nil
}

// GetAllActiveConfigurations caches the full snapshot under its own key and
// opportunistically refreshes the per-key entries it contains.
func (c *CachedRepo) GetAllActiveConfigurations(ctx context.Context) ([]domain.Configuration, error) {
	c.mu.Lock()
	if c.allValid && c.now().Sub(c.allAt) < c.ttl {
		out := cloneConfigs(c.all)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	all, err := c.Repo.GetAllActiveConfigurations(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	now := c.now()
	c.all = cloneConfigs(all)
	c.allAt = now
	c.allValid = true
	for i := range all {
		cfg := all[i]
		key := configKey{ChatID: cfg.ChatID, Type: cfg.Type}
		c.configs[key] = cacheEntry{cfg: cloneConfig(&cfg), fetchedAt: now}
	}
	c.mu.Unlock()
	return all, nil
}

func cloneConfig(cfg *domain.Configuration) *domain.Configuration {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.Days = append(domain.DaySet(nil), cfg.Days...)
	return &out
}

func cloneConfigs(cfgs []domain.Configuration) []domain.Configuration {
	if cfgs == nil {
		return nil
	}
	out := make([]domain.Configuration, len(cfgs))
	for i := range cfgs {
		out[i] = *cloneConfig(&cfgs[i])
	}
	return out
}
