package tip

import "strings"

// HeroTown identifies one of the tradable entities of the event economy.
type HeroTown int

const (
	Unknown HeroTown = iota
	Celine
	Chocolat
	Fergus
	Lednas
	Lenny
)

var townLabels = [...]string{
	Unknown:  "Unknown",
	Celine:   "Celine",
	Chocolat: "Chocolat",
	Fergus:   "Fergus",
	Lednas:   "Lednas",
	Lenny:    "Lenny",
}

// Towns returns the known towns in keyword-table order.
func Towns() []HeroTown {
	return []HeroTown{Celine, Chocolat, Fergus, Lednas, Lenny}
}

// String returns the stable label used for display and storage keys.
func (h HeroTown) String() string {
	if h < 0 || int(h) >= len(townLabels) {
		return townLabels[Unknown]
	}
	return townLabels[h]
}

// ParseHeroTown maps a label back to its town. Unknown labels yield (Unknown, false).
func ParseHeroTown(label string) (HeroTown, bool) {
	label = strings.TrimSpace(label)
	for _, h := range Towns() {
		if strings.EqualFold(h.String(), label) {
			return h, true
		}
	}
	return Unknown, false
}

// MarshalText stores the town by label so JSON and form values stay readable.
func (h HeroTown) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText accepts any known label; anything else decodes to Unknown.
func (h *HeroTown) UnmarshalText(b []byte) error {
	*h, _ = ParseHeroTown(string(b))
	return nil
}
