// Package packs owns the static economy configuration: the rarity table and
// the purchasable pack definitions, loaded once from the embedded YAML.
package packs

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
)

//go:embed config/packs.yaml
var embedConfig embed.FS

var ErrPackNotFound = errors.New("pack not found")

type rawConfig struct {
	Version  string      `yaml:"version"`
	Rarities []rawRarity `yaml:"rarities"`
	Packs    []rawPack   `yaml:"packs"`
}

type rawRarity struct {
	Tier           string  `yaml:"tier"`
	Label          string  `yaml:"label"`
	BaseChance     float64 `yaml:"base_chance"`
	CoinValue      int     `yaml:"coin_value"`
	MinOverall     int     `yaml:"min_overall"`
	PrimaryColor   string  `yaml:"primary_color"`
	SecondaryColor string  `yaml:"secondary_color"`
}

type rawPack struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Cards       int                `yaml:"cards"`
	Cost        int                `yaml:"cost"`
	Description string             `yaml:"description"`
	Guaranteed  string             `yaml:"guaranteed"`
	Boosts      map[string]float64 `yaml:"boosts"`
}

// Catalog is the immutable, process-wide pack and rarity configuration.
type Catalog struct {
	table map[domain.Rarity]domain.RarityInfo
	packs []domain.Pack
	byID  map[string]domain.Pack
}

// New parses and validates the embedded configuration. Called once at wiring.
func New() (*Catalog, error) {
	b, err := embedConfig.ReadFile("config/packs.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded pack config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse pack config: %w", err)
	}

	c := &Catalog{
		table: make(map[domain.Rarity]domain.RarityInfo, len(raw.Rarities)),
		byID:  make(map[string]domain.Pack, len(raw.Packs)),
	}

	for _, r := range raw.Rarities {
		tier := domain.ParseRarity(r.Tier)
		if tier.String() != r.Tier {
			return nil, fmt.Errorf("unknown rarity tier %q in config", r.Tier)
		}
		if r.BaseChance <= 0 {
			return nil, fmt.Errorf("rarity %q: base_chance must be positive", r.Tier)
		}
		if r.CoinValue <= 0 {
			return nil, fmt.Errorf("rarity %q: coin_value must be positive", r.Tier)
		}
		c.table[tier] = domain.RarityInfo{
			Label:          r.Label,
			BaseChance:     r.BaseChance,
			CoinValue:      r.CoinValue,
			MinOverall:     r.MinOverall,
			PrimaryColor:   r.PrimaryColor,
			SecondaryColor: r.SecondaryColor,
		}
	}
	for _, tier := range domain.RarestFirst {
		if _, ok := c.table[tier]; !ok {
			return nil, fmt.Errorf("rarity %q missing from config", tier)
		}
	}

	for _, p := range raw.Packs {
		if p.ID == "" || p.Cards <= 0 || p.Cost <= 0 {
			return nil, fmt.Errorf("pack %q: id, cards and cost are required", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pack id %q", p.ID)
		}

		pack := domain.Pack{
			ID:          p.ID,
			Name:        p.Name,
			Cards:       p.Cards,
			Cost:        p.Cost,
			Description: p.Description,
			Boosts:      make(map[domain.Rarity]float64, len(p.Boosts)),
		}
		if p.Guaranteed != "" {
			tier := domain.ParseRarity(p.Guaranteed)
			if tier.String() != p.Guaranteed {
				return nil, fmt.Errorf("pack %q: unknown guaranteed tier %q", p.ID, p.Guaranteed)
			}
			pack.Guaranteed = &tier
		}
		for name, mult := range p.Boosts {
			tier := domain.ParseRarity(name)
			if tier.String() != name {
				return nil, fmt.Errorf("pack %q: unknown boost tier %q", p.ID, name)
			}
			if mult <= 0 {
				return nil, fmt.Errorf("pack %q: boost for %q must be positive", p.ID, name)
			}
			pack.Boosts[tier] = mult
		}

		c.packs = append(c.packs, pack)
		c.byID[p.ID] = pack
	}

	return c, nil
}

// RarityTable exposes the full tier configuration for the resolver.
func (c *Catalog) RarityTable() map[domain.Rarity]domain.RarityInfo { return c.table }

// Info returns one tier's configuration, degrading to Common for corrupt input.
func (c *Catalog) Info(tier domain.Rarity) domain.RarityInfo {
	if info, ok := c.table[tier]; ok {
		return info
	}
	return c.table[domain.RarityCommon]
}

// SellValue is the shared duplicate-compensation and manual-sell payout:
// half the tier's coin value, floored at a minimum for unrecognized tiers.
func (c *Catalog) SellValue(tier domain.Rarity) int {
	info, ok := c.table[tier]
	if !ok {
		return constants.MinSellValue
	}
	return info.CoinValue / 2
}

// Pack looks up one pack definition by id.
func (c *Catalog) Pack(id string) (domain.Pack, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Pack{}, fmt.Errorf("%w: %s", ErrPackNotFound, id)
	}
	return p, nil
}

// Packs returns every purchasable pack in config order.
func (c *Catalog) Packs() []domain.Pack {
	out := make([]domain.Pack, len(c.packs))
	copy(out, c.packs)
	return out
}
