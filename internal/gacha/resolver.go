package gacha

import "github.com/hoopcrest/hoopcrest/internal/domain"

// Resolver runs the weighted rarity lottery for one card slot.
//
// Tiers are walked rarest-first accumulating baseChance*boost; the first tier
// whose cumulative sum reaches the draw wins. A pack's guaranteed-minimum
// promotes any more-common candidate up to the floor. Weights are not
// normalized to 100, so stacked boosts shift the distribution exactly as
// configured.
type Resolver struct {
	Table map[domain.Rarity]domain.RarityInfo
	RNG   RandomSource
}

func NewResolver(table map[domain.Rarity]domain.RarityInfo, rng RandomSource) *Resolver {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Resolver{Table: table, RNG: rng}
}

// Resolve picks the rarity for a single card slot of the given pack.
func (r *Resolver) Resolve(pack domain.Pack) domain.Rarity {
	draw := r.RNG.Float64() * 100

	cumulative := 0.0
	for _, tier := range domain.RarestFirst {
		info := r.Table[tier]
		boost := pack.Boost(tier)

		// Goat inherits half of an explicit Legendary boost when the pack
		// does not configure Goat itself. Packs that boost Legendary pull
		// Goat along without every pack naming the top tier.
		if tier == domain.RarityGoat && boost == 1.0 {
			if legBoost, ok := pack.Boosts[domain.RarityLegendary]; ok {
				boost = legBoost * 0.5
			}
		}

		cumulative += info.BaseChance * boost

		if draw <= cumulative {
			return promote(tier, pack.Guaranteed)
		}
	}

	// Weights summed below the draw: fall back to the floor, else Common.
	if pack.Guaranteed != nil {
		return *pack.Guaranteed
	}
	return domain.RarityCommon
}

// promote lifts a candidate more common than the pack's floor up to it.
func promote(candidate domain.Rarity, guaranteed *domain.Rarity) domain.Rarity {
	if guaranteed != nil && guaranteed.RarerThan(candidate) {
		return *guaranteed
	}
	return candidate
}
