package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
)

// DailyClaim is the result of a successful daily reward claim.
type DailyClaim struct {
	Reward int `json:"reward"`
	Streak int `json:"streak"`
}

// DailyService settles the once-per-day coin reward with a streak bonus.
type DailyService struct {
	ledger *ledger.Ledger
	now    func() time.Time
	logger zerolog.Logger
}

func NewDailyService(l *ledger.Ledger, logger zerolog.Logger) *DailyService {
	return &DailyService{
		ledger: l,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "daily").Logger(),
	}
}

// Claim awards the daily reward. One claim per UTC day; the streak continues
// while claims stay within the grace window of the previous one and resets
// to 1 otherwise. Reward grows linearly with the streak.
func (s *DailyService) Claim(ctx context.Context) (DailyClaim, error) {
	now := s.now()

	var claim DailyClaim
	err := s.ledger.Update(ctx, func(tx *ledger.Tx) error {
		last := tx.State().LastDailyClaimUTC
		if last != nil && sameUTCDay(*last, now) {
			return ErrCooldownActive
		}

		streak := 1
		if last != nil && now.Sub(*last) <= constants.DailyStreakGrace {
			streak = tx.State().DailyStreak + 1
		}
		reward := constants.DailyBaseReward + (streak-1)*constants.DailyStreakBonus

		tx.AddCoins(reward)
		tx.State().DailyStreak = streak
		tx.SetCooldown(domain.CooldownDaily, now)

		claim = DailyClaim{Reward: reward, Streak: streak}
		return nil
	})
	if err != nil {
		return DailyClaim{}, fmt.Errorf("daily claim: %w", err)
	}

	s.logger.Info().Int("reward", claim.Reward).Int("streak", claim.Streak).Msg("daily reward claimed")
	return claim, nil
}

// NextClaimAt reports when the next claim becomes available, zero when it is
// available now.
func (s *DailyService) NextClaimAt() time.Time {
	state := s.ledger.Snapshot()
	if state.LastDailyClaimUTC == nil || !sameUTCDay(*state.LastDailyClaimUTC, s.now()) {
		return time.Time{}
	}
	next := state.LastDailyClaimUTC.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return next
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
