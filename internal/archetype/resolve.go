package archetype

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// Generator produces a new archetype for a player, typically by invoking the
// backend generation function. A nil record with a nil error means the
// generation ran but yielded nothing. Satisfied by backend.Client.
type Generator interface {
	GenerateArchetype(ctx context.Context, playerID, playerName, statHints string) (*domain.ArchetypeRecord, error)
}

// Resolver walks the full lookup chain for a player's archetype: cache,
// remote fetch, then generation. Generation results are written through the
// cache so the chain short-circuits on the next call.
type Resolver struct {
	cache     *Cache
	generator Generator
	logger    zerolog.Logger
}

func NewResolver(cache *Cache, generator Generator, logger zerolog.Logger) *Resolver {
	return &Resolver{
		cache:     cache,
		generator: generator,
		logger:    logger.With().Str("component", "archetype_resolver").Logger(),
	}
}

// Resolve returns the player's archetype, generating one when no tier has
// it. A cached record that still lacks a crest image also goes through
// generation: the previous attempt may have timed out before the image was
// ready, and only a record with a crest ends the retry chain. When
// regeneration fails the crest-less record is returned unchanged. Returns
// found=false when nothing is cached and generation is unavailable or
// produced nothing; the caller decides whether that is an error.
func (r *Resolver) Resolve(ctx context.Context, player *domain.Player) (domain.ArchetypeRecord, bool, error) {
	rec, ok, err := r.cache.GetOrFetch(ctx, player.ID)
	if err != nil {
		return domain.ArchetypeRecord{}, false, err
	}
	if ok && rec.HasCrestImage() {
		return rec, true, nil
	}

	generated, genErr := r.generate(ctx, player)
	if generated != nil {
		if err := r.cache.Put(ctx, *generated); err != nil {
			r.logger.Warn().Err(err).Str("player_id", player.ID).Msg("caching generated archetype failed")
		}
		return *generated, true, nil
	}

	if ok {
		if genErr != nil {
			r.logger.Warn().Err(genErr).Str("player_id", player.ID).Msg("crest regeneration failed, keeping record")
		}
		return rec, true, nil
	}
	return domain.ArchetypeRecord{}, false, genErr
}

func (r *Resolver) generate(ctx context.Context, player *domain.Player) (*domain.ArchetypeRecord, error) {
	if r.generator == nil {
		return nil, nil
	}
	return r.generator.GenerateArchetype(ctx, player.ID, player.FullName(), player.StatHints())
}
