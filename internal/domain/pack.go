package domain

// Pack is one purchasable pack definition. Guaranteed, when set, is the floor
// rarity no card slot may resolve below. Boosts multiply a tier's base chance;
// tiers absent from the map use a multiplier of 1.0.
type Pack struct {
	ID          string
	Name        string
	Cards       int
	Cost        int
	Description string

	Guaranteed *Rarity
	Boosts     map[Rarity]float64
}

// Boost returns the configured multiplier for a tier, defaulting to 1.0.
func (p Pack) Boost(tier Rarity) float64 {
	if b, ok := p.Boosts[tier]; ok {
		return b
	}
	return 1.0
}
