package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/gacha"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
)

// prize is one weighted entry in a mini-game reward table.
type prize struct {
	Coins  int
	Weight int
}

var luckySpinPrizes = []prize{
	{Coins: 50, Weight: 40},
	{Coins: 100, Weight: 30},
	{Coins: 250, Weight: 18},
	{Coins: 500, Weight: 9},
	{Coins: 1000, Weight: 3},
}

var mysteryBoxPrizes = []prize{
	{Coins: 100, Weight: 35},
	{Coins: 200, Weight: 25},
	{Coins: 300, Weight: 20},
	{Coins: 500, Weight: 12},
	{Coins: 750, Weight: 5},
	{Coins: 2000, Weight: 3},
}

// MiniGameService settles the four mini-games against the ledger. Question
// sourcing for trivia and the flip animation are client concerns; only the
// coin award contract lives here.
type MiniGameService struct {
	ledger *ledger.Ledger
	rng    gacha.RandomSource
	now    func() time.Time
	logger zerolog.Logger
}

func NewMiniGameService(l *ledger.Ledger, rng gacha.RandomSource, logger zerolog.Logger) *MiniGameService {
	return &MiniGameService{
		ledger: l,
		rng:    rng,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "minigames").Logger(),
	}
}

// LuckySpin draws a weighted prize and starts the spin cooldown.
func (s *MiniGameService) LuckySpin(ctx context.Context) (int, error) {
	return s.settlePrize(ctx, domain.CooldownLuckySpin, constants.LuckySpinCooldown, luckySpinPrizes)
}

// MysteryBox draws a weighted prize and starts the box cooldown.
func (s *MiniGameService) MysteryBox(ctx context.Context) (int, error) {
	return s.settlePrize(ctx, domain.CooldownMysteryBox, constants.MysteryBoxCooldown, mysteryBoxPrizes)
}

func (s *MiniGameService) settlePrize(ctx context.Context, kind domain.Cooldown, cooldown time.Duration, table []prize) (int, error) {
	now := s.now()
	won := drawPrize(table, s.rng)

	err := s.ledger.Update(ctx, func(tx *ledger.Tx) error {
		if err := checkCooldown(tx.State(), kind, cooldown, now); err != nil {
			return err
		}
		tx.AddCoins(won)
		tx.SetCooldown(kind, now)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kind, err)
	}

	s.logger.Info().Str("game", string(kind)).Int("coins", won).Msg("prize settled")
	return won, nil
}

// CoinFlipResult reports one settled flip.
type CoinFlipResult struct {
	Won   bool `json:"won"`
	Delta int  `json:"delta"`
}

// CoinFlip settles an even-odds bet: the balance moves by the bet amount in
// either direction. The bet must sit inside the allowed range on the step
// grid and within the current balance.
func (s *MiniGameService) CoinFlip(ctx context.Context, bet int) (CoinFlipResult, error) {
	if bet < constants.CoinFlipMinBet || bet > constants.CoinFlipMaxBet || bet%constants.CoinFlipBetStep != 0 {
		return CoinFlipResult{}, fmt.Errorf("coin flip bet %d: %w", bet, ErrInvalidBet)
	}

	now := s.now()
	won := s.rng.Float64() < 0.5

	var result CoinFlipResult
	err := s.ledger.Update(ctx, func(tx *ledger.Tx) error {
		if err := checkCooldown(tx.State(), domain.CooldownCoinFlip, constants.CoinFlipCooldown, now); err != nil {
			return err
		}
		if won {
			tx.AddCoins(bet)
			result = CoinFlipResult{Won: true, Delta: bet}
		} else {
			if err := tx.SpendCoins(bet); err != nil {
				return err
			}
			result = CoinFlipResult{Won: false, Delta: -bet}
		}
		tx.SetCooldown(domain.CooldownCoinFlip, now)
		return nil
	})
	if err != nil {
		return CoinFlipResult{}, fmt.Errorf("coin flip: %w", err)
	}

	s.logger.Info().Bool("won", result.Won).Int("delta", result.Delta).Msg("coin flip settled")
	return result, nil
}

// SettleTrivia awards coins per correct answer and starts the trivia
// cooldown. Correct counts outside the round size are rejected.
func (s *MiniGameService) SettleTrivia(ctx context.Context, correct int) (int, error) {
	if correct < 0 || correct > constants.TriviaQuestionCount {
		return 0, fmt.Errorf("trivia correct=%d: %w", correct, ErrInvalidBet)
	}

	now := s.now()
	reward := correct * constants.TriviaPointsPerCorrect

	err := s.ledger.Update(ctx, func(tx *ledger.Tx) error {
		if err := checkCooldown(tx.State(), domain.CooldownTrivia, constants.TriviaCooldown, now); err != nil {
			return err
		}
		tx.AddCoins(reward)
		tx.SetCooldown(domain.CooldownTrivia, now)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("trivia: %w", err)
	}

	s.logger.Info().Int("correct", correct).Int("reward", reward).Msg("trivia settled")
	return reward, nil
}

func checkCooldown(state *domain.GameState, kind domain.Cooldown, cooldown time.Duration, now time.Time) error {
	last := state.CooldownAt(kind)
	if last != nil && now.Sub(*last) < cooldown {
		return ErrCooldownActive
	}
	return nil
}

func drawPrize(table []prize, rng gacha.RandomSource) int {
	total := 0
	for _, p := range table {
		total += p.Weight
	}
	draw := rng.Float64() * float64(total)
	cumulative := 0.0
	for _, p := range table {
		cumulative += float64(p.Weight)
		if draw < cumulative {
			return p.Coins
		}
	}
	return table[len(table)-1].Coins
}
