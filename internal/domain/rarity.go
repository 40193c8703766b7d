package domain

// Rarity is the closed tier enumeration, ordered from most common to rarest.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityGoat
)

// RarestFirst is the canonical resolution order for the pack lottery.
// The resolver walks this slice top-down; changing it changes drop rates.
var RarestFirst = []Rarity{
	RarityGoat,
	RarityLegendary,
	RarityEpic,
	RarityRare,
	RarityUncommon,
	RarityCommon,
}

// RarityInfo carries the static configuration of one tier.
type RarityInfo struct {
	Label          string
	BaseChance     float64 // pull probability as a percentage
	CoinValue      int
	MinOverall     int
	PrimaryColor   string
	SecondaryColor string
}

func (r Rarity) String() string {
	switch r {
	case RarityGoat:
		return "goat"
	case RarityLegendary:
		return "legendary"
	case RarityEpic:
		return "epic"
	case RarityRare:
		return "rare"
	case RarityUncommon:
		return "uncommon"
	default:
		return "common"
	}
}

// ParseRarity maps a config/wire label back to its tier. Unknown labels
// resolve to Common so corrupt data degrades instead of failing.
func ParseRarity(s string) Rarity {
	switch s {
	case "goat":
		return RarityGoat
	case "legendary":
		return RarityLegendary
	case "epic":
		return RarityEpic
	case "rare":
		return RarityRare
	case "uncommon":
		return RarityUncommon
	default:
		return RarityCommon
	}
}

// RarerThan reports whether r sits above other in the tier ordering.
func (r Rarity) RarerThan(other Rarity) bool { return r > other }

func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rarity) UnmarshalText(b []byte) error {
	*r = ParseRarity(string(b))
	return nil
}
