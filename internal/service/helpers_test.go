package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/archetype"
	"github.com/hoopcrest/hoopcrest/internal/catalog"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/gacha"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
	"github.com/hoopcrest/hoopcrest/internal/packs"
)

// Roster spanning every tier the elite pack can resolve to, plus commons.
const rosterFixture = `id,first_name,last_name,team_id,team_abbreviation,position,height,draft_year,draft_round,draft_number,games,ppg,rpg,apg,spg,bpg,fg_pct,scrape_status
p1,Michael,Jordan,1610612741,CHI,G,6-6,1984,1,3,1072,30.1,6.2,5.3,2.3,0.8,0.497,found
p2,Nikola,Jokic,1610612743,DEN,C,6-11,2014,2,41,596,20.2,10.5,6.6,1.3,0.7,0.557,found
p3,Epic,Forward,1610612744,GSW,F,6-9,1996,1,5,1200,20.0,8.0,5.0,1.0,0.5,0.48,found
p4,Rare,Guard,1610612745,HOU,G,6-4,2001,1,8,1200,15.0,6.0,4.0,0.6,0.4,0.46,found
p5,Common,One,1610612746,LAC,F,6-8,,,,0,0,0,0,0,0,0,not_found
p6,Common,Two,1610612747,LAL,C,7-0,,,,0,0,0,0,0,0,0,not_found
`

const singleCommonRoster = `id,first_name,last_name,team_id,team_abbreviation,position,height,draft_year,draft_round,draft_number,games,ppg,rpg,apg,spg,bpg,fg_pct,scrape_status
p1,Only,Player,1610612741,CHI,G,6-6,,,,0,0,0,0,0,0,0,not_found
`

type memStore struct {
	mu     sync.Mutex
	states map[string]domain.GameState
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]domain.GameState)}
}

func (s *memStore) Load(_ context.Context, userID string) (domain.GameState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	return state, ok, nil
}

func (s *memStore) Save(_ context.Context, userID string, state domain.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state.Clone()
	return nil
}

type memArchetypes struct {
	mu      sync.Mutex
	records map[string]domain.ArchetypeRecord
}

func newMemArchetypes() *memArchetypes {
	return &memArchetypes{records: make(map[string]domain.ArchetypeRecord)}
}

func (m *memArchetypes) Get(_ context.Context, playerID string) (domain.ArchetypeRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[playerID]
	return rec, ok, nil
}

func (m *memArchetypes) GetAll(_ context.Context) (map[string]domain.ArchetypeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.ArchetypeRecord, len(m.records))
	for id, rec := range m.records {
		out[id] = rec
	}
	return out, nil
}

func (m *memArchetypes) Put(_ context.Context, rec domain.ArchetypeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.PlayerID] = rec
	return nil
}

func (m *memArchetypes) Delete(_ context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, playerID)
	return nil
}

type recordedPurchases struct {
	mu        sync.Mutex
	purchases []domain.PackPurchase
}

func (r *recordedPurchases) Create(_ context.Context, p domain.PackPurchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases = append(r.purchases, p)
	return nil
}

type countingGenerator struct {
	mu     sync.Mutex
	record *domain.ArchetypeRecord
	err    error
	calls  int
}

func (g *countingGenerator) GenerateArchetype(_ context.Context, playerID, _, _ string) (*domain.ArchetypeRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.record == nil {
		return nil, nil
	}
	rec := *g.record
	rec.PlayerID = playerID
	return &rec, nil
}

func (g *countingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// seqRNG replays a fixed draw sequence.
type seqRNG struct {
	vals []float64
	i    int
}

func (s *seqRNG) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

type engineFixture struct {
	engine    *Engine
	ledger    *ledger.Ledger
	cache     *archetype.Cache
	store     *memStore
	purchases *recordedPurchases
	packs     *packs.Catalog
}

func newEngineFixture(t *testing.T, roster string, rng gacha.RandomSource, startState *domain.GameState) *engineFixture {
	t.Helper()
	ctx := context.Background()

	packCatalog, err := packs.New()
	if err != nil {
		t.Fatalf("packs.New() error = %v", err)
	}
	players, err := catalog.Load(strings.NewReader(roster), packCatalog.RarityTable(), zerolog.Nop())
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}

	store := newMemStore()
	if startState != nil {
		store.states["u1"] = *startState
	}
	led, err := ledger.Open(ctx, "u1", store, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}

	cache, err := archetype.NewCache(ctx, newMemArchetypes(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("archetype.NewCache() error = %v", err)
	}

	purchases := &recordedPurchases{}
	engine := NewEngine(EngineParams{
		UserID:    "u1",
		Packs:     packCatalog,
		Players:   players,
		Resolver:  gacha.NewResolver(packCatalog.RarityTable(), rng),
		RNG:       rng,
		Ledger:    led,
		Cache:     cache,
		Purchases: purchases,
	}, zerolog.Nop())

	return &engineFixture{
		engine:    engine,
		ledger:    led,
		cache:     cache,
		store:     store,
		purchases: purchases,
		packs:     packCatalog,
	}
}
