package service

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/archetype"
	"github.com/hoopcrest/hoopcrest/internal/catalog"
	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/gacha"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
	"github.com/hoopcrest/hoopcrest/internal/packs"
)

// PackResult is one resolved card slot, in slot order.
type PackResult struct {
	Player         domain.Player `json:"player"`
	IsDuplicate    bool          `json:"isDuplicate"`
	DuplicateCoins int           `json:"duplicateCoins"`
}

// PurchaseRecorder mirrors pack purchase audit rows locally. Satisfied by
// repository.PurchaseRepository.
type PurchaseRecorder interface {
	Create(ctx context.Context, p domain.PackPurchase) error
}

// RemotePurchaseRecorder appends the audit record to the remote store.
// Satisfied by backend.Client.
type RemotePurchaseRecorder interface {
	CreatePurchase(ctx context.Context, p domain.PackPurchase) error
}

// Engine orchestrates a pack purchase: affordability, rarity resolution,
// player selection, duplicate compensation, audit, and archetype generation
// for new cards.
type Engine struct {
	userID    string
	packs     *packs.Catalog
	players   *catalog.Catalog
	resolver  *gacha.Resolver
	rng       gacha.RandomSource
	ledger    *ledger.Ledger
	cache     *archetype.Cache
	archetype *archetype.Resolver
	purchases PurchaseRecorder
	remote    RemotePurchaseRecorder
	logger    zerolog.Logger
}

type EngineParams struct {
	UserID    string
	Packs     *packs.Catalog
	Players   *catalog.Catalog
	Resolver  *gacha.Resolver
	RNG       gacha.RandomSource
	Ledger    *ledger.Ledger
	Cache     *archetype.Cache
	Archetype *archetype.Resolver
	Purchases PurchaseRecorder
	Remote    RemotePurchaseRecorder
}

func NewEngine(p EngineParams, logger zerolog.Logger) *Engine {
	return &Engine{
		userID:    p.UserID,
		packs:     p.Packs,
		players:   p.Players,
		resolver:  p.Resolver,
		rng:       p.RNG,
		ledger:    p.Ledger,
		cache:     p.Cache,
		archetype: p.Archetype,
		purchases: p.Purchases,
		remote:    p.Remote,
		logger:    logger.With().Str("component", "engine").Logger(),
	}
}

// OpenPack resolves every card slot of the pack and applies the economy
// effects in one ledger transaction. Duplicate-vs-new status for slot N is
// evaluated against the ownership built up by slots 1..N-1 of the same call.
// Audit and archetype generation run afterwards and never roll back the
// grant.
func (e *Engine) OpenPack(ctx context.Context, packID string) ([]PackResult, error) {
	pack, err := e.packs.Pack(packID)
	if err != nil {
		return nil, err
	}

	results := make([]PackResult, 0, pack.Cards)
	err = e.ledger.Update(ctx, func(tx *ledger.Tx) error {
		if err := tx.SpendCoins(pack.Cost); err != nil {
			return err
		}
		tx.State().Stats.PacksOpened++

		for slot := 0; slot < pack.Cards; slot++ {
			tier := e.resolver.Resolve(pack)
			player, err := e.pickPlayer(tier)
			if err != nil {
				return err
			}

			result := PackResult{Player: player}
			if tx.Grant(player.ID) {
				tx.State().Stats.CardsCollected++
				tx.State().Stats.IncrementRarityCount(player.Rarity)
			} else {
				result.IsDuplicate = true
				result.DuplicateCoins = e.packs.SellValue(player.Rarity)
				tx.AddCoins(result.DuplicateCoins)
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open pack %s: %w", packID, err)
	}

	e.recordPurchase(ctx, pack, results)
	e.generateForNewCards(ctx, results)
	return results, nil
}

// pickPlayer samples uniformly from the tier's pool, degrading to the Common
// pool when the tier is empty.
func (e *Engine) pickPlayer(tier domain.Rarity) (domain.Player, error) {
	pool := e.players.ByRarity(tier)
	if len(pool) == 0 && tier != domain.RarityCommon {
		e.logger.Warn().Str("rarity", tier.String()).Msg("empty rarity pool, falling back to common")
		pool = e.players.ByRarity(domain.RarityCommon)
	}
	if len(pool) == 0 {
		return domain.Player{}, ErrNoPlayersAvailable
	}
	return *pool[int(e.rng.Float64()*float64(len(pool)))], nil
}

// SellCard removes the card from the collection, awards half its rarity's
// coin value, and evicts any cached archetype so a future pull regenerates
// it.
func (e *Engine) SellCard(ctx context.Context, playerID string) (int, error) {
	player, ok := e.players.ByID(playerID)
	if !ok {
		return 0, fmt.Errorf("sell %s: %w", playerID, ErrNotOwned)
	}
	coins := e.packs.SellValue(player.Rarity)

	err := e.ledger.Update(ctx, func(tx *ledger.Tx) error {
		if !tx.Revoke(playerID) {
			return ErrNotOwned
		}
		tx.AddCoins(coins)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sell %s: %w", playerID, err)
	}

	if err := e.cache.Evict(ctx, playerID); err != nil {
		e.logger.Warn().Err(err).Str("player_id", playerID).Msg("archetype evict failed")
	}
	return coins, nil
}

func (e *Engine) recordPurchase(ctx context.Context, pack domain.Pack, results []PackResult) {
	id, err := gonanoid.New()
	if err != nil {
		e.logger.Warn().Err(err).Msg("purchase id generation failed, skipping audit")
		return
	}

	received := make([]string, 0, len(results))
	for _, r := range results {
		received = append(received, r.Player.ID)
	}
	purchase := domain.PackPurchase{
		ID:              id,
		UserID:          e.userID,
		PackID:          pack.ID,
		Cost:            pack.Cost,
		PurchasedAt:     time.Now().UTC(),
		PlayersReceived: received,
	}

	if e.purchases != nil {
		if err := e.purchases.Create(ctx, purchase); err != nil {
			e.logger.Warn().Err(err).Msg("local purchase audit failed")
		}
	}
	if e.remote != nil {
		if err := e.remote.CreatePurchase(ctx, purchase); err != nil {
			e.logger.Warn().Err(err).Msg("remote purchase audit failed")
		}
	}
}

// generateForNewCards requests archetypes for newly granted cards that lack
// a cached record with a crest image. Failures leave the card crest-less and
// retryable.
func (e *Engine) generateForNewCards(ctx context.Context, results []PackResult) {
	if e.archetype == nil {
		return
	}
	crests := 0
	for _, r := range results {
		if r.IsDuplicate {
			continue
		}
		if rec, ok := e.cache.Get(r.Player.ID); ok && rec.HasCrestImage() {
			continue
		}

		genCtx, cancel := context.WithTimeout(ctx, constants.GenerationTimeout)
		rec, found, err := e.archetype.Resolve(genCtx, &r.Player)
		cancel()
		if err != nil {
			e.logger.Warn().Err(err).Str("player_id", r.Player.ID).Msg("archetype generation failed")
			continue
		}
		if found && rec.HasCrestImage() {
			crests++
		}
	}

	if crests > 0 {
		err := e.ledger.Update(ctx, func(tx *ledger.Tx) error {
			tx.State().Stats.CrestsGenerated += crests
			return nil
		})
		if err != nil {
			e.logger.Warn().Err(err).Msg("crest stat update failed")
		}
	}
}
