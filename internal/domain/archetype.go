package domain

import "time"

// ArchetypeRecord is the generated enrichment for one player card. A record
// without a crest image means generation ran but the image step failed or is
// still pending; the card is fully playable either way.
type ArchetypeRecord struct {
	PlayerID         string    `json:"playerId"`
	PlayerName       string    `json:"playerName"`
	Archetype        string    `json:"archetype"`
	SubArchetype     string    `json:"subArchetype"`
	Confidence       string    `json:"confidence"` // high, medium, low
	PlayStyleSummary string    `json:"playStyleSummary"`
	ImagePrompt      string    `json:"imagePrompt"`
	CrestSeed        string    `json:"crestSeed"`
	CrestImageURL    string    `json:"crestImageUrl,omitempty"`
	CrestImageFileID string    `json:"crestImageFileId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// HasCrestImage reports whether the visual crest asset exists yet.
func (a ArchetypeRecord) HasCrestImage() bool { return a.CrestImageURL != "" }
