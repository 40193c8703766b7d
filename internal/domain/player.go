package domain

import "fmt"

// Player is one roster entry. Raw fields come from the bundled dataset;
// Overall, Rarity, Era and HasStats are derived once at catalog load and the
// record is immutable afterwards.
type Player struct {
	ID               string
	FirstName        string
	LastName         string
	TeamID           string
	TeamAbbreviation string
	Position         string
	Height           string
	DraftYear        string
	DraftRound       string
	DraftNumber      string

	Games int
	PPG   float64
	RPG   float64
	APG   float64
	SPG   float64
	BPG   float64
	FGPct float64

	Overall  int
	Rarity   Rarity
	Era      Era
	HasStats bool
}

func (p Player) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// StatHints renders the short stat summary handed to the archetype generator.
func (p Player) StatHints() string {
	return fmt.Sprintf("PPG: %.1f, RPG: %.1f, APG: %.1f, Games: %d, Position: %s",
		p.PPG, p.RPG, p.APG, p.Games, p.Position)
}
