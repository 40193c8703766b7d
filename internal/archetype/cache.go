package archetype

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// LocalStore persists archetype records on disk. Satisfied by
// repository.ArchetypeRepository.
type LocalStore interface {
	Get(ctx context.Context, playerID string) (domain.ArchetypeRecord, bool, error)
	GetAll(ctx context.Context) (map[string]domain.ArchetypeRecord, error)
	Put(ctx context.Context, record domain.ArchetypeRecord) error
	Delete(ctx context.Context, playerID string) error
}

// RemoteStore is the backend archetype collection. Satisfied by
// backend.Client.
type RemoteStore interface {
	GetArchetype(ctx context.Context, playerID string) (*domain.ArchetypeRecord, error)
	ListArchetypes(ctx context.Context) (map[string]domain.ArchetypeRecord, error)
	PutArchetype(ctx context.Context, record domain.ArchetypeRecord) error
	DeleteArchetype(ctx context.Context, playerID string) error
}

// Cache is a write-through archetype cache: an in-memory map backed by the
// local store, with the remote backend as the slower second tier. Local
// writes are synchronous; remote writes are best effort.
type Cache struct {
	mu     sync.RWMutex
	byID   map[string]domain.ArchetypeRecord
	local  LocalStore
	remote RemoteStore
	logger zerolog.Logger
}

// NewCache warms the in-memory tier from the local store.
func NewCache(ctx context.Context, local LocalStore, remote RemoteStore, logger zerolog.Logger) (*Cache, error) {
	records, err := local.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Cache{
		byID:   records,
		local:  local,
		remote: remote,
		logger: logger.With().Str("component", "archetype_cache").Logger(),
	}, nil
}

// Get returns the cached record without touching the remote tier.
func (c *Cache) Get(playerID string) (domain.ArchetypeRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.byID[playerID]
	return rec, ok
}

// GetOrFetch checks the in-memory tier first, then the remote backend. A
// remote hit is written through to the local store before returning. A
// remote miss or error returns found=false; the error is returned only for
// transport failures so callers can distinguish absent from unreachable.
func (c *Cache) GetOrFetch(ctx context.Context, playerID string) (domain.ArchetypeRecord, bool, error) {
	if rec, ok := c.Get(playerID); ok {
		return rec, true, nil
	}
	if c.remote == nil {
		return domain.ArchetypeRecord{}, false, nil
	}

	rec, err := c.remote.GetArchetype(ctx, playerID)
	if err != nil {
		return domain.ArchetypeRecord{}, false, err
	}
	if rec == nil {
		return domain.ArchetypeRecord{}, false, nil
	}

	if err := c.storeLocal(ctx, *rec); err != nil {
		c.logger.Warn().Err(err).Str("player_id", playerID).Msg("local write-through failed")
	}
	return *rec, true, nil
}

// Put stores a record in both tiers. The local write must succeed; the
// remote write is logged and swallowed on failure.
func (c *Cache) Put(ctx context.Context, record domain.ArchetypeRecord) error {
	if err := c.storeLocal(ctx, record); err != nil {
		return err
	}
	if c.remote != nil {
		if err := c.remote.PutArchetype(ctx, record); err != nil {
			c.logger.Warn().Err(err).Str("player_id", record.PlayerID).Msg("remote put failed")
		}
	}
	return nil
}

// Evict removes a record from every tier. Used when a card leaves the
// collection so a future pull regenerates it fresh.
func (c *Cache) Evict(ctx context.Context, playerID string) error {
	c.mu.Lock()
	delete(c.byID, playerID)
	c.mu.Unlock()

	if err := c.local.Delete(ctx, playerID); err != nil {
		return err
	}
	if c.remote != nil {
		if err := c.remote.DeleteArchetype(ctx, playerID); err != nil {
			c.logger.Warn().Err(err).Str("player_id", playerID).Msg("remote delete failed")
		}
	}
	return nil
}

// RefreshFromRemote pulls the full remote collection and unions it into the
// local tiers. Remote records overwrite local ones with the same player id;
// local-only records survive.
func (c *Cache) RefreshFromRemote(ctx context.Context) error {
	if c.remote == nil {
		return nil
	}
	records, err := c.remote.ListArchetypes(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := c.storeLocal(ctx, rec); err != nil {
			return err
		}
	}
	c.logger.Info().Int("count", len(records)).Msg("refreshed archetypes from remote")
	return nil
}

// Size reports the number of in-memory records.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// All returns a copy of the in-memory tier.
func (c *Cache) All() map[string]domain.ArchetypeRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]domain.ArchetypeRecord, len(c.byID))
	for id, rec := range c.byID {
		out[id] = rec
	}
	return out
}

func (c *Cache) storeLocal(ctx context.Context, record domain.ArchetypeRecord) error {
	if err := c.local.Put(ctx, record); err != nil {
		return err
	}
	c.mu.Lock()
	c.byID[record.PlayerID] = record
	c.mu.Unlock()
	return nil
}
