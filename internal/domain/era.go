package domain

import "strconv"

// Era buckets a player by draft year for display grouping.
type Era int

const (
	EraUnknown Era = iota
	EraClassic
	EraEighties
	EraNineties
	EraTwoThousands
	EraTwentyTens
	EraModern
)

var eraLabels = map[Era]string{
	EraModern:       "Modern",
	EraTwentyTens:   "2010s",
	EraTwoThousands: "2000s",
	EraNineties:     "90s",
	EraEighties:     "80s",
	EraClassic:      "Classic",
	EraUnknown:      "Unknown",
}

func (e Era) String() string {
	if label, ok := eraLabels[e]; ok {
		return label
	}
	return "Unknown"
}

// EraForDraftYear maps a raw draft-year string to its era bucket.
// Unparseable years land in EraUnknown.
func EraForDraftYear(draftYear string) Era {
	year, err := strconv.Atoi(draftYear)
	if err != nil {
		return EraUnknown
	}
	switch {
	case year >= 2020:
		return EraModern
	case year >= 2010:
		return EraTwentyTens
	case year >= 2000:
		return EraTwoThousands
	case year >= 1990:
		return EraNineties
	case year >= 1980:
		return EraEighties
	default:
		return EraClassic
	}
}
