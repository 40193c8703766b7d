package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// Hardcoded ratings for the all-time greats; the formula below tops out at 98.
var hardcodedRatings = map[string]int{
	"michael jordan":      99,
	"lebron james":        99,
	"kareem abdul-jabbar": 98,
	"nikola jokic":        98,
	"wilt chamberlain":    98,
	"tim duncan":          98,
}

// Only these two ever resolve to the Goat tier, regardless of overall.
var goatNames = map[string]bool{
	"michael jordan": true,
	"lebron james":   true,
}

// computeOverall derives a player's 60-99 overall score from career stats,
// falling back to draft position for players with too little data.
func computeOverall(p domain.Player) int {
	fullName := strings.ToLower(p.FirstName + " " + p.LastName)
	if rating, ok := hardcodedRatings[fullName]; ok {
		return rating
	}

	if p.Games < 10 || p.PPG == 0 {
		return overallFromDraftPosition(p.DraftRound, p.DraftNumber)
	}

	ptsScore := math.Min(100, p.PPG/25*100)
	rebScore := math.Min(100, p.RPG/10*100)
	astScore := math.Min(100, p.APG/8*100)
	defScore := math.Min(100, (p.SPG+p.BPG)/2.5*100)
	effScore := 50.0
	if p.FGPct > 0 {
		effScore = math.Min(100, p.FGPct/0.50*100)
	}

	longevityBonus := math.Min(3, float64(p.Games)/1200*3)

	rawScore := ptsScore*0.40 + rebScore*0.15 + astScore*0.18 +
		defScore*0.12 + effScore*0.15

	overall := 52 + rawScore*0.47 + longevityBonus

	// 99 is reserved for the hardcoded GOATs.
	return int(math.Max(60, math.Min(98, math.Round(overall))))
}

func overallFromDraftPosition(draftRound, draftNumber string) int {
	round, err := strconv.Atoi(draftRound)
	if err != nil {
		return 62 // undrafted or unknown
	}
	pick, err := strconv.Atoi(draftNumber)
	if err != nil {
		pick = 30
	}

	switch {
	case round == 1 && pick <= 3:
		return 75
	case round == 1 && pick <= 10:
		return 72
	case round == 1:
		return 68
	case round == 2:
		return 65
	default:
		return 62
	}
}

// determineRarity maps an overall score onto a tier using the configured
// min-overall thresholds. The Goat tier is name-gated, never score-gated.
func determineRarity(overall int, firstName, lastName string, table map[domain.Rarity]domain.RarityInfo) domain.Rarity {
	fullName := strings.ToLower(firstName + " " + lastName)
	if goatNames[fullName] {
		return domain.RarityGoat
	}

	for _, tier := range []domain.Rarity{
		domain.RarityLegendary,
		domain.RarityEpic,
		domain.RarityRare,
		domain.RarityUncommon,
	} {
		if overall >= table[tier].MinOverall {
			return tier
		}
	}
	return domain.RarityCommon
}
