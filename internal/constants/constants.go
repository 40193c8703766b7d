package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second

	// Archetype generation runs as an async backend function; the client
	// polls until this deadline, then treats the attempt as absent.
	GenerationTimeout      = 120 * time.Second
	GenerationPollInterval = 2 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Economy constants.
const (
	StartingCoins = 1000

	// Unknown tiers sell for this floor instead of failing.
	MinSellValue = 5

	DailyBaseReward  = 100
	DailyStreakBonus = 50
	// A streak survives until this long after the previous claim.
	DailyStreakGrace = 48 * time.Hour
)

// Mini-game cooldowns.
const (
	LuckySpinCooldown  = 3 * time.Hour
	MysteryBoxCooldown = 6 * time.Hour
	CoinFlipCooldown   = 4 * time.Hour
	TriviaCooldown     = 16 * time.Hour
	DailyClaimCooldown = 24 * time.Hour
)

// Coin flip betting bounds.
const (
	CoinFlipMinBet  = 25
	CoinFlipMaxBet  = 2500
	CoinFlipBetStep = 25
)

const (
	TriviaQuestionCount    = 5
	TriviaPointsPerCorrect = 100
)

const (
	// Remote ledger pushes retry with fibonacci backoff up to this budget
	// before giving up; local state is already durable by then.
	SyncPushMaxElapsed = 15 * time.Second
	SyncPushBaseDelay  = 250 * time.Millisecond
)
