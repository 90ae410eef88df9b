package tip

import "fmt"

// Tip is one parsed price-change prediction for a town, tied to a turn range.
// SourceURL is attached by the caller; the pipeline never sets it.
type Tip struct {
	HeroTown    HeroTown `json:"hero_town"`
	CurrentTurn int      `json:"current_turn"`
	TargetTurn  int      `json:"target_turn"`
	PriceChange int      `json:"price_change"`
	SourceURL   string   `json:"source_url,omitempty"`
}

// New builds a populated tip.
func New(town HeroTown, currentTurn, targetTurn, priceChange int) Tip {
	return Tip{HeroTown: town, CurrentTurn: currentTurn, TargetTurn: targetTurn, PriceChange: priceChange}
}

// Failed is the sentinel record returned alongside an unsuccessful result.
func Failed() Tip {
	return Tip{HeroTown: Unknown, CurrentTurn: -1, TargetTurn: -1, PriceChange: 0}
}

// Valid reports whether the tip came from a successful recognition.
func (t Tip) Valid() bool {
	return t.HeroTown != Unknown
}

// PriceChangeOpAndAbs splits the change into "+"/"-" and its magnitude. Zero is "+".
func (t Tip) PriceChangeOpAndAbs() (string, int) {
	if t.PriceChange >= 0 {
		return "+", t.PriceChange
	}
	return "-", -t.PriceChange
}

// String renders "<Town> T<target> = T<current> <op> <abs>".
func (t Tip) String() string {
	op, abs := t.PriceChangeOpAndAbs()
	return fmt.Sprintf("%s T%d = T%d %s %d", t.HeroTown, t.TargetTurn, t.CurrentTurn, op, abs)
}
