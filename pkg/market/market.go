// Package market answers round and buy questions from the price board: the prices editors
// observed plus the prices recorded tips predict from them.
package market

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"stonktip/pkg/tip"
)

// columnOrder is the order towns are compared and listed in. Ties go to the earlier town.
var columnOrder = []tip.HeroTown{tip.Celine, tip.Chocolat, tip.Fergus, tip.Lenny, tip.Lednas}

// Clock maps wall time to rounds 1..MaxTurn.
type Clock struct {
	Start   time.Time
	Length  time.Duration
	MaxTurn int
}

// Current returns the round running at now, clamped to [1, MaxTurn].
func (c Clock) Current(now time.Time) int {
	if c.Length <= 0 {
		return 1
	}
	return clamp(int(now.Sub(c.Start)/c.Length)+1, 1, c.MaxTurn)
}

// Board holds the price of every town for turns 1..MaxTurn, where known.
type Board struct {
	Current int
	MaxTurn int
	prices  map[tip.HeroTown]map[int]int
}

// NewBoard fills the board turn by turn. An observed price is used as is. Otherwise a tip
// targeting the turn gives the price at its current turn plus its change, when that price is known.
func NewBoard(current, maxTurn int, observed map[tip.HeroTown]map[int]int, tips []tip.Tip) *Board {
	predicted := map[tip.HeroTown]map[int]tip.Tip{}
	for _, t := range tips {
		if !t.Valid() {
			continue
		}
		if predicted[t.HeroTown] == nil {
			predicted[t.HeroTown] = map[int]tip.Tip{}
		}
		predicted[t.HeroTown][t.TargetTurn] = t
	}
	b := &Board{Current: clamp(current, 1, maxTurn), MaxTurn: maxTurn, prices: map[tip.HeroTown]map[int]int{}}
	for _, town := range columnOrder {
		row := map[int]int{}
		for turn := 1; turn <= maxTurn; turn++ {
			if p, ok := observed[town][turn]; ok {
				row[turn] = p
				continue
			}
			t, ok := predicted[town][turn]
			if !ok {
				continue
			}
			if base, ok := row[t.CurrentTurn]; ok {
				row[turn] = base + t.PriceChange
			}
		}
		b.prices[town] = row
	}
	return b
}

// Price returns the price of town at turn, with turn clamped to the board.
func (b *Board) Price(town tip.HeroTown, turn int) (int, bool) {
	p, ok := b.prices[town][clamp(turn, 1, b.MaxTurn)]
	return p, ok
}

// Ended reports whether the last round is running.
func (b *Board) Ended() bool { return b.Current == b.MaxTurn }

// Report is the answer to one question. Lines is the chat form of the same answer.
type Report struct {
	Round   int        `json:"round"`
	Ended   bool       `json:"ended"`
	Missing []string   `json:"missing_current_price,omitempty"`
	Picks   []Pick     `json:"picks,omitempty"`
	Tips    []Forecast `json:"tips,omitempty"`
	Lines   []string   `json:"lines"`
}

// Message joins the report lines.
func (r Report) Message() string { return strings.Join(r.Lines, "\n") }

// Pick is the best growth from the current round to TargetTurn. Town is empty when no town grows.
type Pick struct {
	Turns      int     `json:"turns"`
	TargetTurn int     `json:"target_turn"`
	Town       string  `json:"town,omitempty"`
	Percent    float64 `json:"percent"`
}

// Forecast is the first known price of a town after the current round.
type Forecast struct {
	Town      string  `json:"town"`
	Available bool    `json:"available"`
	Price     int     `json:"price,omitempty"`
	Turn      int     `json:"turn,omitempty"`
	Percent   float64 `json:"percent"`
}

// Round reports the current round and whether the event has ended.
func (b *Board) Round() Report {
	r := Report{Round: b.Current, Ended: b.Ended()}
	r.Lines = append(r.Lines, fmt.Sprintf("The current round is %d.", b.Current))
	if r.Ended {
		r.Lines = append(r.Lines, "Event has ended. Thanks for playing.")
	}
	return r
}

// BestBuy picks the town with the highest positive growth next round.
func (b *Board) BestBuy() Report {
	r, usable, ok := b.open()
	if !ok {
		return r
	}
	target := b.Current + 1
	town, pct := b.best(usable, target)
	r.Picks = append(r.Picks, newPick(1, target, town, pct))
	if town == tip.Unknown {
		r.Lines = append(r.Lines, "No good stock to buy this round. Consider holding.")
	} else {
		r.Lines = append(r.Lines, fmt.Sprintf("%s will have the highest growth of %s next round.", town, FormatPercent(pct)))
	}
	return r
}

// TargetBuy picks, for each n, the town with the highest positive growth over the next n
// rounds. Targets past the last round are clamped to it.
func (b *Board) TargetBuy(turns []int) Report {
	r, usable, ok := b.open()
	if !ok {
		return r
	}
	for _, n := range turns {
		target := min(b.Current+n, b.MaxTurn)
		diff := target - b.Current
		town, pct := b.best(usable, target)
		r.Picks = append(r.Picks, newPick(diff, target, town, pct))
		if town == tip.Unknown {
			r.Lines = append(r.Lines, fmt.Sprintf("No good stock to hold for %d round(s).", diff))
		} else {
			r.Lines = append(r.Lines, fmt.Sprintf("%s will have the highest growth of %s in %d round(s).", town, FormatPercent(pct), diff))
		}
	}
	return r
}

// Tips gives the first known price after the current round for each town. Towns without a
// current price are only named in the missing list.
func (b *Board) Tips(towns []tip.HeroTown) Report {
	r, usable, ok := b.open()
	if !ok {
		return r
	}
	for _, town := range towns {
		if !slices.Contains(usable, town) {
			continue
		}
		before, _ := b.Price(town, b.Current)
		f := Forecast{Town: town.String()}
		for turn := b.Current + 1; turn <= b.MaxTurn; turn++ {
			if p, ok := b.Price(town, turn); ok {
				f = Forecast{Town: town.String(), Available: true, Price: p, Turn: turn, Percent: ChangePercent(before, p)}
				break
			}
		}
		r.Tips = append(r.Tips, f)
		if f.Available {
			r.Lines = append(r.Lines, fmt.Sprintf("%s will be %d on round %d. A change of %s.", town, f.Price, f.Turn, FormatPercent(f.Percent)))
		} else {
			r.Lines = append(r.Lines, fmt.Sprintf("No tip available for %s.", town))
		}
	}
	return r
}

// open starts a report and returns the towns with a usable current price. ok is false once
// the event has ended; the report then only carries the round.
func (b *Board) open() (r Report, usable []tip.HeroTown, ok bool) {
	r = b.Round()
	if r.Ended {
		return r, nil, false
	}
	for _, town := range columnOrder {
		// a zero price cannot be a base for a change percent
		if p, has := b.Price(town, b.Current); has && p > 0 {
			usable = append(usable, town)
		} else {
			r.Missing = append(r.Missing, town.String())
		}
	}
	if len(r.Missing) > 0 {
		r.Lines = append(r.Lines,
			fmt.Sprintf("No current price for %s.", strings.Join(r.Missing, ", ")),
			"Please contact an available editor and request them to update.")
	}
	return r, usable, true
}

func (b *Board) best(usable []tip.HeroTown, target int) (tip.HeroTown, float64) {
	best, bestPct := tip.Unknown, 0.0
	for _, town := range usable {
		before, _ := b.Price(town, b.Current)
		after, ok := b.Price(town, target)
		if !ok {
			continue
		}
		if pct := ChangePercent(before, after); pct > bestPct {
			best, bestPct = town, pct
		}
	}
	return best, bestPct
}

func newPick(turns, target int, town tip.HeroTown, pct float64) Pick {
	p := Pick{Turns: turns, TargetTurn: target, Percent: pct}
	if town != tip.Unknown {
		p.Town = town.String()
	}
	return p
}

// ChangePercent is the change from before to after in percent, rounded to two decimals.
func ChangePercent(before, after int) float64 {
	pct := 100 * (float64(after-before) / float64(before))
	return math.Round(pct*100) / 100
}

// FormatPercent renders pct with at least one decimal: 30 becomes "30.0%".
func FormatPercent(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
