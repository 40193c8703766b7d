package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hoopcrest/hoopcrest/internal/archetype"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
)

// RemoteLedger fetches and stores the per-user ledger document. Satisfied by
// backend.Client.
type RemoteLedger interface {
	GetLedger(ctx context.Context, userID string) (*domain.GameState, error)
	PutLedger(ctx context.Context, userID string, state domain.GameState) error
}

// SyncCoordinator reconciles local and remote state once per session start.
type SyncCoordinator struct {
	userID string
	ledger *ledger.Ledger
	cache  *archetype.Cache
	remote RemoteLedger
	logger zerolog.Logger
}

func NewSyncCoordinator(userID string, l *ledger.Ledger, cache *archetype.Cache, remote RemoteLedger, logger zerolog.Logger) *SyncCoordinator {
	return &SyncCoordinator{
		userID: userID,
		ledger: l,
		cache:  cache,
		remote: remote,
		logger: logger.With().Str("component", "sync").Logger(),
	}
}

// Run fetches the remote ledger document and the remote archetype dump
// concurrently, merges the ledger, persists the result, and pushes the
// merged snapshot back. A missing remote document leaves local state as is.
func (s *SyncCoordinator) Run(ctx context.Context) error {
	var remoteState *domain.GameState

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state, err := s.remote.GetLedger(gctx, s.userID)
		if err != nil {
			return fmt.Errorf("fetch remote ledger: %w", err)
		}
		remoteState = state
		return nil
	})
	g.Go(func() error {
		if err := s.cache.RefreshFromRemote(gctx); err != nil {
			return fmt.Errorf("refresh archetypes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if remoteState == nil {
		s.logger.Info().Msg("no remote ledger document, keeping local state")
		return nil
	}

	merged := Reconcile(s.ledger.Snapshot(), *remoteState)
	if err := s.ledger.Replace(ctx, merged); err != nil {
		return fmt.Errorf("persist merged ledger: %w", err)
	}
	if err := s.remote.PutLedger(ctx, s.userID, merged); err != nil {
		s.logger.Warn().Err(err).Msg("push of merged ledger failed")
	}

	s.logger.Info().Int("coins", merged.Coins).Int("cards", len(merged.Collection)).Msg("reconciled with remote")
	return nil
}

// Reconcile merges a local and a remote snapshot field by field:
// coins keep the remote value unless it is zero, the collection is unioned,
// counters take the per-field maximum, cooldown timestamps take the later
// side, and the daily streak always follows the remote.
func Reconcile(local, remote domain.GameState) domain.GameState {
	merged := local.Clone()

	if remote.Coins > 0 {
		merged.Coins = remote.Coins
	}

	seen := make(map[string]struct{}, len(merged.Collection))
	for _, id := range merged.Collection {
		seen[id] = struct{}{}
	}
	for _, id := range remote.Collection {
		if _, ok := seen[id]; !ok {
			merged.Collection = append(merged.Collection, id)
			seen[id] = struct{}{}
		}
	}

	merged.Stats = mergeStats(local.Stats, remote.Stats)
	merged.DailyStreak = remote.DailyStreak

	for _, kind := range []domain.Cooldown{
		domain.CooldownDaily,
		domain.CooldownLuckySpin,
		domain.CooldownMysteryBox,
		domain.CooldownCoinFlip,
		domain.CooldownTrivia,
	} {
		if t := laterTime(local.CooldownAt(kind), remote.CooldownAt(kind)); t != nil {
			merged.SetCooldown(kind, *t)
		}
	}
	return merged
}

func mergeStats(a, b domain.GameStats) domain.GameStats {
	return domain.GameStats{
		PacksOpened:     maxInt(a.PacksOpened, b.PacksOpened),
		CardsCollected:  maxInt(a.CardsCollected, b.CardsCollected),
		CrestsGenerated: maxInt(a.CrestsGenerated, b.CrestsGenerated),
		GoatCount:       maxInt(a.GoatCount, b.GoatCount),
		LegendaryCount:  maxInt(a.LegendaryCount, b.LegendaryCount),
		EpicCount:       maxInt(a.EpicCount, b.EpicCount),
		RareCount:       maxInt(a.RareCount, b.RareCount),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// laterTime picks the more recent timestamp; a non-nil side beats a nil one.
func laterTime(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
