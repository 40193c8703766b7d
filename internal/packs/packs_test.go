package packs

import (
	"errors"
	"testing"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

func TestNewLoadsEmbeddedConfig(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := len(c.RarityTable()); got != 6 {
		t.Errorf("rarity table size = %d, want 6", got)
	}
	if got := len(c.Packs()); got != 4 {
		t.Errorf("pack count = %d, want 4", got)
	}
}

func TestRarityTableValues(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		tier           domain.Rarity
		wantChance     float64
		wantCoinValue  int
		wantMinOverall int
	}{
		{domain.RarityGoat, 0.5, 2000, 99},
		{domain.RarityLegendary, 2, 500, 94},
		{domain.RarityEpic, 8, 200, 88},
		{domain.RarityRare, 15, 75, 80},
		{domain.RarityUncommon, 25, 30, 72},
		{domain.RarityCommon, 50, 10, 0},
	}
	for _, tt := range tests {
		info := c.Info(tt.tier)
		if info.BaseChance != tt.wantChance {
			t.Errorf("%v base chance = %v, want %v", tt.tier, info.BaseChance, tt.wantChance)
		}
		if info.CoinValue != tt.wantCoinValue {
			t.Errorf("%v coin value = %d, want %d", tt.tier, info.CoinValue, tt.wantCoinValue)
		}
		if info.MinOverall != tt.wantMinOverall {
			t.Errorf("%v min overall = %d, want %d", tt.tier, info.MinOverall, tt.wantMinOverall)
		}
	}
}

func TestSellValue(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		tier domain.Rarity
		want int
	}{
		{"legendary sells for half its coin value", domain.RarityLegendary, 250},
		{"common sells for half its coin value", domain.RarityCommon, 5},
		{"goat sells for half its coin value", domain.RarityGoat, 1000},
		{"unknown tier falls back to the minimum", domain.Rarity(42), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.SellValue(tt.tier); got != tt.want {
				t.Errorf("SellValue(%v) = %d, want %d", tt.tier, got, tt.want)
			}
		})
	}
}

func TestPackDefinitions(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		id             string
		wantCards      int
		wantCost       int
		wantGuaranteed *domain.Rarity
		wantBoosts     map[domain.Rarity]float64
	}{
		{"standard", 3, 100, nil, nil},
		{"premium", 5, 250, nil, map[domain.Rarity]float64{
			domain.RarityRare: 1.5, domain.RarityEpic: 1.3, domain.RarityLegendary: 1.2,
		}},
		{"elite", 5, 500, rarityPtr(domain.RarityRare), map[domain.Rarity]float64{
			domain.RarityEpic: 2.0, domain.RarityLegendary: 1.5,
		}},
		{"legendary", 3, 1000, rarityPtr(domain.RarityEpic), map[domain.Rarity]float64{
			domain.RarityLegendary: 3.0,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := c.Pack(tt.id)
			if err != nil {
				t.Fatalf("Pack(%q) error = %v", tt.id, err)
			}
			if p.Cards != tt.wantCards {
				t.Errorf("cards = %d, want %d", p.Cards, tt.wantCards)
			}
			if p.Cost != tt.wantCost {
				t.Errorf("cost = %d, want %d", p.Cost, tt.wantCost)
			}
			if (p.Guaranteed == nil) != (tt.wantGuaranteed == nil) {
				t.Fatalf("guaranteed = %v, want %v", p.Guaranteed, tt.wantGuaranteed)
			}
			if p.Guaranteed != nil && *p.Guaranteed != *tt.wantGuaranteed {
				t.Errorf("guaranteed = %v, want %v", *p.Guaranteed, *tt.wantGuaranteed)
			}
			for tier, want := range tt.wantBoosts {
				if got := p.Boost(tier); got != want {
					t.Errorf("boost(%v) = %v, want %v", tier, got, want)
				}
			}
			if got := p.Boost(domain.RarityCommon); got != 1.0 {
				t.Errorf("unconfigured boost = %v, want 1.0", got)
			}
		})
	}
}

func TestPackNotFound(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.Pack("does-not-exist"); !errors.Is(err, ErrPackNotFound) {
		t.Errorf("Pack() error = %v, want ErrPackNotFound", err)
	}
}

func rarityPtr(r domain.Rarity) *domain.Rarity { return &r }
