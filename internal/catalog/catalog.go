// Package catalog holds the immutable player roster: loaded once from the
// bundled CSV dataset, indexed by identity and by rarity, then read-only and
// safe for unsynchronized concurrent reads.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// Catalog is the process-wide read-only player index.
type Catalog struct {
	players  []domain.Player
	byID     map[string]*domain.Player
	byRarity map[domain.Rarity][]*domain.Player
}

// Meta summarizes what the roster load produced.
type Meta struct {
	TotalPlayers     int
	PlayersWithStats int
}

// LoadFile ingests the roster CSV from disk. Load-once: callers construct a
// single Catalog at wiring time and share it.
func LoadFile(path string, table map[domain.Rarity]domain.RarityInfo, logger zerolog.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Load(f, table, logger)
}

// Load ingests the roster from a reader, derives each player's overall,
// rarity and era, and builds the identity and rarity indices.
func Load(r io.Reader, table map[domain.Rarity]domain.RarityInfo, logger zerolog.Logger) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	c := &Catalog{
		byID:     make(map[string]*domain.Player),
		byRarity: make(map[domain.Rarity][]*domain.Player),
	}

	withStats := 0
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping unparseable roster row")
			continue
		}

		p := parsePlayer(record, col)
		if p.ID == "" {
			continue
		}

		p.Overall = computeOverall(p)
		p.Rarity = determineRarity(p.Overall, p.FirstName, p.LastName, table)
		p.Era = domain.EraForDraftYear(p.DraftYear)
		p.HasStats = field(record, col, "scrape_status") == "found" && p.Games > 0
		if p.HasStats {
			withStats++
		}

		c.players = append(c.players, p)
	}

	// Stable display order: overall desc, then scoring as tiebreak.
	sort.SliceStable(c.players, func(i, j int) bool {
		if c.players[i].Overall != c.players[j].Overall {
			return c.players[i].Overall > c.players[j].Overall
		}
		return c.players[i].PPG > c.players[j].PPG
	})

	for i := range c.players {
		p := &c.players[i]
		c.byID[p.ID] = p
		c.byRarity[p.Rarity] = append(c.byRarity[p.Rarity], p)
	}

	logger.Info().
		Int("players", len(c.players)).
		Int("with_stats", withStats).
		Msg("player catalog loaded")

	return c, nil
}

func parsePlayer(record []string, col map[string]int) domain.Player {
	get := func(key string) string { return field(record, col, key) }
	getFloat := func(key string) float64 {
		v, _ := strconv.ParseFloat(get(key), 64)
		return v
	}
	getInt := func(key string) int {
		v, _ := strconv.Atoi(get(key))
		return v
	}

	return domain.Player{
		ID:               get("id"),
		FirstName:        get("first_name"),
		LastName:         get("last_name"),
		TeamID:           get("team_id"),
		TeamAbbreviation: get("team_abbreviation"),
		Position:         get("position"),
		Height:           get("height"),
		DraftYear:        get("draft_year"),
		DraftRound:       get("draft_round"),
		DraftNumber:      get("draft_number"),
		Games:            getInt("games"),
		PPG:              getFloat("ppg"),
		RPG:              getFloat("rpg"),
		APG:              getFloat("apg"),
		SPG:              getFloat("spg"),
		BPG:              getFloat("bpg"),
		FGPct:            getFloat("fg_pct"),
	}
}

func field(record []string, col map[string]int, key string) string {
	idx, ok := col[key]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// ByID returns the player with the given identity, or false.
func (c *Catalog) ByID(id string) (domain.Player, bool) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

// ByRarity returns all players of one tier. The returned slice is shared;
// callers must not mutate it.
func (c *Catalog) ByRarity(tier domain.Rarity) []*domain.Player {
	return c.byRarity[tier]
}

// Players returns the full roster in display order.
func (c *Catalog) Players() []domain.Player {
	out := make([]domain.Player, len(c.players))
	copy(out, c.players)
	return out
}

// Meta reports roster aggregates for diagnostics.
func (c *Catalog) Meta() Meta {
	withStats := 0
	for i := range c.players {
		if c.players[i].HasStats {
			withStats++
		}
	}
	return Meta{TotalPlayers: len(c.players), PlayersWithStats: withStats}
}
