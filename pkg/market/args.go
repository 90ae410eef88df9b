package market

import (
	"fmt"
	"strconv"
	"strings"

	"stonktip/pkg/tip"
)

const turnsHint = "Accept positive numbers only."

// ParseTurns keeps the positive whole numbers of args and returns the rest as invalid.
func ParseTurns(args []string) (turns []int, invalid []string) {
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			invalid = append(invalid, a)
			continue
		}
		turns = append(turns, n)
	}
	return turns, invalid
}

// ParseTowns resolves lower-case town names, dropping duplicates. "all" selects every town
// and silences invalid names.
func ParseTowns(args []string) (towns []tip.HeroTown, invalid []string) {
	for _, a := range args {
		if a == "all" {
			return append([]tip.HeroTown(nil), columnOrder...), nil
		}
	}
	seen := map[tip.HeroTown]bool{}
	for _, a := range args {
		town, ok := townByName(a)
		if !ok {
			invalid = append(invalid, a)
			continue
		}
		if !seen[town] {
			seen[town] = true
			towns = append(towns, town)
		}
	}
	return towns, invalid
}

func townByName(name string) (tip.HeroTown, bool) {
	for _, town := range columnOrder {
		if strings.ToLower(town.String()) == name {
			return town, true
		}
	}
	return tip.Unknown, false
}

// TownChoices lists what ParseTowns accepts.
func TownChoices() []string {
	out := []string{"all"}
	for _, town := range columnOrder {
		out = append(out, strings.ToLower(town.String()))
	}
	return out
}

// MissingTurnsMessage answers a target buy without any turn count.
func MissingTurnsMessage() string {
	return "At least 1 turn count is required. " + turnsHint
}

// InvalidTurnsMessage names the rejected turn counts.
func InvalidTurnsMessage(invalid []string) string {
	return fmt.Sprintf("Invalid argument(s): %s. %s", strings.Join(invalid, ", "), turnsHint)
}

// MissingTownsMessage answers a tips query without any town.
func MissingTownsMessage() string {
	return fmt.Sprintf("At least 1 town is required. Accept: %s.", strings.Join(TownChoices(), ", "))
}

// InvalidTownsMessage names the rejected town names.
func InvalidTownsMessage(invalid []string) string {
	return fmt.Sprintf("Invalid argument(s): %s. Accept: %s.", strings.Join(invalid, ", "), strings.Join(TownChoices(), ", "))
}
