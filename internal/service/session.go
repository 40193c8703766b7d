package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/archetype"
	"github.com/hoopcrest/hoopcrest/internal/catalog"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/gacha"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
	"github.com/hoopcrest/hoopcrest/internal/packs"
	"github.com/hoopcrest/hoopcrest/internal/repository"
)

// Session bundles one user's ledger, cache, and services. A session mutex
// serializes mutating operations because the affordability-check-then-deduct
// sequences assume sequential callers.
type Session struct {
	UserID string

	mu        sync.Mutex
	ledger    *ledger.Ledger
	cache     *archetype.Cache
	players   *catalog.Catalog
	resolver  *archetype.Resolver
	engine    *Engine
	daily     *DailyService
	miniGames *MiniGameService

	syncOnce sync.Once
	coord    *SyncCoordinator
	logger   zerolog.Logger
}

// reconcile runs the remote reconciliation once, before the first operation
// on the session proceeds. The session mutex keeps mutations from landing
// mid-merge.
func (s *Session) reconcile(ctx context.Context) {
	if s.coord == nil {
		return
	}
	s.syncOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.coord.Run(ctx); err != nil {
			s.logger.Warn().Err(err).Str("user_id", s.UserID).Msg("reconciliation failed, continuing on local state")
		}
	})
}

func (s *Session) OpenPack(ctx context.Context, packID string) ([]PackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.OpenPack(ctx, packID)
}

func (s *Session) SellCard(ctx context.Context, playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SellCard(ctx, playerID)
}

func (s *Session) ClaimDaily(ctx context.Context) (DailyClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daily.Claim(ctx)
}

func (s *Session) LuckySpin(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.miniGames.LuckySpin(ctx)
}

func (s *Session) MysteryBox(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.miniGames.MysteryBox(ctx)
}

func (s *Session) CoinFlip(ctx context.Context, bet int) (CoinFlipResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.miniGames.CoinFlip(ctx, bet)
}

func (s *Session) SettleTrivia(ctx context.Context, correct int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.miniGames.SettleTrivia(ctx, correct)
}

// State returns a snapshot of the session's economy state.
func (s *Session) State() domain.GameState {
	return s.ledger.Snapshot()
}

// Archetype returns the player's record, walking cache then remote and
// re-attempting generation when the record is absent or still lacks a crest
// image. Players outside the roster fall back to a plain cache lookup.
func (s *Session) Archetype(ctx context.Context, playerID string) (domain.ArchetypeRecord, bool, error) {
	player, ok := s.players.ByID(playerID)
	if !ok {
		return s.cache.GetOrFetch(ctx, playerID)
	}
	return s.resolver.Resolve(ctx, &player)
}

// Subscribe registers a state observer on the session's ledger.
func (s *Session) Subscribe(fn func(domain.GameState)) func() {
	return s.ledger.Subscribe(fn)
}

// Close drains in-flight remote pushes.
func (s *Session) Close() {
	s.ledger.Flush()
}

// RemoteBackend is the full remote surface a session uses. Satisfied by
// backend.Client.
type RemoteBackend interface {
	ledger.RemotePusher
	archetype.RemoteStore
	archetype.Generator
	RemotePurchaseRecorder
	GetLedger(ctx context.Context, userID string) (*domain.GameState, error)
}

// Manager creates and caches sessions per user id. Sessions for different
// users are fully independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	packs     *packs.Catalog
	players   *catalog.Catalog
	rng       gacha.RandomSource
	ledgers   *repository.LedgerRepository
	arches    *repository.ArchetypeRepository
	purchases *repository.PurchaseRepository
	client    RemoteBackend
	logger    zerolog.Logger
}

type ManagerParams struct {
	Packs     *packs.Catalog
	Players   *catalog.Catalog
	RNG       gacha.RandomSource
	Ledgers   *repository.LedgerRepository
	Arches    *repository.ArchetypeRepository
	Purchases *repository.PurchaseRepository
	Client    RemoteBackend
}

func NewManager(p ManagerParams, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		packs:     p.Packs,
		players:   p.Players,
		rng:       p.RNG,
		ledgers:   p.Ledgers,
		arches:    p.Arches,
		purchases: p.Purchases,
		client:    p.Client,
		logger:    logger,
	}
}

// Session returns the user's session, constructing it and running the remote
// reconciliation on first use. A failed reconciliation is logged and the
// session continues on local state. The manager lock covers construction
// only; reconciliation runs under the session's own mutex so one user's slow
// merge never stalls session creation for another.
func (m *Manager) Session(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if !ok {
		var err error
		s, err = m.buildSession(ctx, userID)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.sessions[userID] = s
	}
	m.mu.Unlock()

	s.reconcile(ctx)
	return s, nil
}

func (m *Manager) buildSession(ctx context.Context, userID string) (*Session, error) {
	led, err := ledger.Open(ctx, userID, m.ledgers, m.client, m.logger)
	if err != nil {
		return nil, err
	}
	cache, err := archetype.NewCache(ctx, m.arches, m.client, m.logger)
	if err != nil {
		return nil, err
	}

	resolver := archetype.NewResolver(cache, m.client, m.logger)
	engine := NewEngine(EngineParams{
		UserID:    userID,
		Packs:     m.packs,
		Players:   m.players,
		Resolver:  gacha.NewResolver(m.packs.RarityTable(), m.rng),
		RNG:       m.rng,
		Ledger:    led,
		Cache:     cache,
		Archetype: resolver,
		Purchases: m.purchases,
		Remote:    m.client,
	}, m.logger)

	return &Session{
		UserID:    userID,
		ledger:    led,
		cache:     cache,
		players:   m.players,
		resolver:  resolver,
		engine:    engine,
		daily:     NewDailyService(led, m.logger),
		miniGames: NewMiniGameService(led, m.rng, m.logger),
		coord:     NewSyncCoordinator(userID, led, cache, m.client, m.logger),
		logger:    m.logger,
	}, nil
}

// Close drains every session's in-flight pushes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.Close()
	}
}
