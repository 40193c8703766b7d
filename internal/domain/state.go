package domain

import "time"

// GameState is the serialized form of one user's economy state: the local
// snapshot, the remote ledger document and the in-memory ledger all share it.
type GameState struct {
	Coins      int       `json:"coins"`
	Collection []string  `json:"collection"`
	Stats      GameStats `json:"stats"`

	DailyStreak       int        `json:"dailyStreak"`
	LastDailyClaimUTC *time.Time `json:"lastDailyClaimUtc,omitempty"`

	LastLuckySpinUTC  *time.Time `json:"lastLuckySpinUtc,omitempty"`
	LastMysteryBoxUTC *time.Time `json:"lastMysteryBoxUtc,omitempty"`
	LastCoinFlipUTC   *time.Time `json:"lastCoinFlipUtc,omitempty"`
	LastTriviaUTC     *time.Time `json:"lastTriviaUtc,omitempty"`
}

// GameStats are monotonic aggregate counters.
type GameStats struct {
	PacksOpened     int `json:"packsOpened"`
	CardsCollected  int `json:"cardsCollected"`
	CrestsGenerated int `json:"crestsGenerated"`
	GoatCount       int `json:"goatCount"`
	LegendaryCount  int `json:"legendaryCount"`
	EpicCount       int `json:"epicCount"`
	RareCount       int `json:"rareCount"`
}

// IncrementRarityCount bumps the high-tier counter for a newly collected card.
// Tiers below Rare are not tracked individually.
func (s *GameStats) IncrementRarityCount(tier Rarity) {
	switch tier {
	case RarityGoat:
		s.GoatCount++
	case RarityLegendary:
		s.LegendaryCount++
	case RarityEpic:
		s.EpicCount++
	case RarityRare:
		s.RareCount++
	}
}

// NewGameState returns the fresh-install state with the starting balance.
func NewGameState(startingCoins int) GameState {
	return GameState{Coins: startingCoins, Collection: []string{}}
}

// Cooldown identifies one of the five independent cooldown timestamps.
type Cooldown string

const (
	CooldownDaily      Cooldown = "daily"
	CooldownLuckySpin  Cooldown = "lucky_spin"
	CooldownMysteryBox Cooldown = "mystery_box"
	CooldownCoinFlip   Cooldown = "coin_flip"
	CooldownTrivia     Cooldown = "trivia"
)

// CooldownAt returns the stored timestamp for the given cooldown, nil when
// the activity has never been played.
func (s *GameState) CooldownAt(c Cooldown) *time.Time {
	switch c {
	case CooldownDaily:
		return s.LastDailyClaimUTC
	case CooldownLuckySpin:
		return s.LastLuckySpinUTC
	case CooldownMysteryBox:
		return s.LastMysteryBoxUTC
	case CooldownCoinFlip:
		return s.LastCoinFlipUTC
	case CooldownTrivia:
		return s.LastTriviaUTC
	}
	return nil
}

// SetCooldown stores a timestamp for the given cooldown.
func (s *GameState) SetCooldown(c Cooldown, t time.Time) {
	switch c {
	case CooldownDaily:
		s.LastDailyClaimUTC = &t
	case CooldownLuckySpin:
		s.LastLuckySpinUTC = &t
	case CooldownMysteryBox:
		s.LastMysteryBoxUTC = &t
	case CooldownCoinFlip:
		s.LastCoinFlipUTC = &t
	case CooldownTrivia:
		s.LastTriviaUTC = &t
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the ledger's backing slices.
func (s GameState) Clone() GameState {
	out := s
	out.Collection = append([]string(nil), s.Collection...)
	clonePtr := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		c := *t
		return &c
	}
	out.LastDailyClaimUTC = clonePtr(s.LastDailyClaimUTC)
	out.LastLuckySpinUTC = clonePtr(s.LastLuckySpinUTC)
	out.LastMysteryBoxUTC = clonePtr(s.LastMysteryBoxUTC)
	out.LastCoinFlipUTC = clonePtr(s.LastCoinFlipUTC)
	out.LastTriviaUTC = clonePtr(s.LastTriviaUTC)
	return out
}
