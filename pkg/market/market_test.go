package market

import (
	"reflect"
	"testing"
	"time"

	"stonktip/pkg/tip"
)

// sampleBoard is round 3 of 10. Lednas has no current price; Fergus skips turn 4 and
// Lenny's turn 6 price chains off its predicted turn 4 price.
func sampleBoard() *Board {
	observed := map[tip.HeroTown]map[int]int{
		tip.Celine:   {3: 100},
		tip.Chocolat: {3: 200},
		tip.Fergus:   {3: 50},
		tip.Lenny:    {3: 80},
	}
	tips := []tip.Tip{
		tip.New(tip.Celine, 3, 4, 30),
		tip.New(tip.Chocolat, 3, 4, 20),
		tip.New(tip.Fergus, 3, 5, 10),
		tip.New(tip.Lenny, 3, 4, -8),
		tip.New(tip.Lenny, 4, 6, 28),
		tip.Failed(),
	}
	return NewBoard(3, 10, observed, tips)
}

func TestClockCurrent(t *testing.T) {
	start := time.Unix(1_000_000, 0)
	c := Clock{Start: start, Length: time.Hour, MaxTurn: 5}
	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start", start.Add(-30 * time.Minute), 1},
		{"long before start", start.Add(-5 * time.Hour), 1},
		{"at start", start, 1},
		{"end of first round", start.Add(59 * time.Minute), 1},
		{"second round", start.Add(time.Hour), 2},
		{"past the last round", start.Add(100 * time.Hour), 5},
	}
	for _, tc := range cases {
		if got := c.Current(tc.now); got != tc.want {
			t.Errorf("%s: Current = %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestChangePercent(t *testing.T) {
	cases := []struct {
		before, after int
		want          float64
	}{
		{100, 130, 30},
		{3, 4, 33.33},
		{3, 2, -33.33},
		{7, 8, 14.29},
		{200, 199, -0.5},
		{50, 50, 0},
	}
	for _, tc := range cases {
		if got := ChangePercent(tc.before, tc.after); got != tc.want {
			t.Errorf("ChangePercent(%d, %d) = %v want %v", tc.before, tc.after, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[float64]string{
		30:     "30.0%",
		33.33:  "33.33%",
		-0.5:   "-0.5%",
		0:      "0.0%",
		-12.25: "-12.25%",
	}
	for in, want := range cases {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q want %q", in, got, want)
		}
	}
}

func TestBoardPrices(t *testing.T) {
	b := sampleBoard()
	cases := []struct {
		town tip.HeroTown
		turn int
		want int
		ok   bool
	}{
		{tip.Celine, 4, 130, true},
		{tip.Fergus, 4, 0, false},
		{tip.Fergus, 5, 60, true},
		{tip.Lenny, 4, 72, true},
		{tip.Lenny, 6, 100, true},
		{tip.Lednas, 3, 0, false},
		{tip.Celine, 0, 0, false},
	}
	for _, tc := range cases {
		got, ok := b.Price(tc.town, tc.turn)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Price(%s, %d) = %d,%v want %d,%v", tc.town, tc.turn, got, ok, tc.want, tc.ok)
		}
	}
}

func TestObservedPriceWinsOverTip(t *testing.T) {
	b := NewBoard(3, 5, map[tip.HeroTown]map[int]int{tip.Celine: {3: 100, 4: 90}},
		[]tip.Tip{tip.New(tip.Celine, 3, 4, 30)})
	if got, _ := b.Price(tip.Celine, 4); got != 90 {
		t.Fatalf("Celine T4 = %d want observed 90", got)
	}
}

func TestTipWithoutBasePriceIsIgnored(t *testing.T) {
	b := NewBoard(3, 5, nil, []tip.Tip{tip.New(tip.Celine, 3, 4, 30)})
	if _, ok := b.Price(tip.Celine, 4); ok {
		t.Fatalf("a tip needs the price of its current turn")
	}
}

var missingLednas = []string{
	"No current price for Lednas.",
	"Please contact an available editor and request them to update.",
}

func TestBestBuy(t *testing.T) {
	r := sampleBoard().BestBuy()
	want := append([]string{"The current round is 3."}, missingLednas...)
	want = append(want, "Celine will have the highest growth of 30.0% next round.")
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines\n%q\nwant\n%q", r.Lines, want)
	}
	if len(r.Picks) != 1 || r.Picks[0] != (Pick{Turns: 1, TargetTurn: 4, Town: "Celine", Percent: 30}) {
		t.Fatalf("picks %+v", r.Picks)
	}
	if !reflect.DeepEqual(r.Missing, []string{"Lednas"}) {
		t.Fatalf("missing %v", r.Missing)
	}
}

func TestBestBuyWithoutGrowth(t *testing.T) {
	observed := map[tip.HeroTown]map[int]int{}
	for _, town := range columnOrder {
		observed[town] = map[int]int{1: 100, 2: 90}
	}
	r := NewBoard(1, 5, observed, nil).BestBuy()
	want := []string{"The current round is 1.", "No good stock to buy this round. Consider holding."}
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines %q want %q", r.Lines, want)
	}
	if r.Picks[0].Town != "" {
		t.Fatalf("no town should be picked, got %+v", r.Picks[0])
	}
}

func TestBestBuyTieGoesToEarlierColumn(t *testing.T) {
	observed := map[tip.HeroTown]map[int]int{
		tip.Lednas: {1: 100, 2: 110},
		tip.Lenny:  {1: 100, 2: 110},
	}
	r := NewBoard(1, 5, observed, nil).BestBuy()
	if r.Picks[0].Town != "Lenny" {
		t.Fatalf("tie picked %q want Lenny", r.Picks[0].Town)
	}
}

func TestTargetBuy(t *testing.T) {
	r := sampleBoard().TargetBuy([]int{2, 3, 100})
	want := append([]string{"The current round is 3."}, missingLednas...)
	want = append(want,
		"Fergus will have the highest growth of 20.0% in 2 round(s).",
		"Lenny will have the highest growth of 25.0% in 3 round(s).",
		"No good stock to hold for 7 round(s).",
	)
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines\n%q\nwant\n%q", r.Lines, want)
	}
	if r.Picks[2].TargetTurn != 10 || r.Picks[2].Turns != 7 {
		t.Fatalf("target past the last round must clamp: %+v", r.Picks[2])
	}
}

func TestTips(t *testing.T) {
	b := NewBoard(3, 10,
		map[tip.HeroTown]map[int]int{tip.Celine: {3: 100}, tip.Fergus: {3: 50}, tip.Chocolat: {3: 200}},
		[]tip.Tip{tip.New(tip.Celine, 3, 4, 30), tip.New(tip.Fergus, 3, 5, 10)})
	r := b.Tips([]tip.HeroTown{tip.Lednas, tip.Fergus, tip.Chocolat, tip.Celine})
	want := []string{
		"The current round is 3.",
		"No current price for Lenny, Lednas.",
		"Please contact an available editor and request them to update.",
		"Fergus will be 60 on round 5. A change of 20.0%.",
		"No tip available for Chocolat.",
		"Celine will be 130 on round 4. A change of 30.0%.",
	}
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines\n%q\nwant\n%q", r.Lines, want)
	}
	if len(r.Tips) != 3 || r.Tips[1].Available || r.Tips[0].Turn != 5 {
		t.Fatalf("forecasts %+v", r.Tips)
	}
}

func TestEndedEventOnlyReportsRound(t *testing.T) {
	b := NewBoard(12, 10, nil, nil)
	want := []string{"The current round is 10.", "Event has ended. Thanks for playing."}
	for name, r := range map[string]Report{
		"round":     b.Round(),
		"bestbuy":   b.BestBuy(),
		"targetbuy": b.TargetBuy([]int{1}),
		"tips":      b.Tips(columnOrder),
	} {
		if !reflect.DeepEqual(r.Lines, want) || !r.Ended || len(r.Picks) != 0 || len(r.Missing) != 0 {
			t.Errorf("%s: %+v", name, r)
		}
	}
}

func TestParseTurns(t *testing.T) {
	turns, invalid := ParseTurns([]string{"2", "x", "0", "-1", "3"})
	if !reflect.DeepEqual(turns, []int{2, 3}) || !reflect.DeepEqual(invalid, []string{"x", "0", "-1"}) {
		t.Fatalf("turns=%v invalid=%v", turns, invalid)
	}
	if got := InvalidTurnsMessage(invalid); got != "Invalid argument(s): x, 0, -1. Accept positive numbers only." {
		t.Fatalf("message %q", got)
	}
}

func TestParseTowns(t *testing.T) {
	towns, invalid := ParseTowns([]string{"fergus", "celine", "fergus", "atlantis"})
	if !reflect.DeepEqual(towns, []tip.HeroTown{tip.Fergus, tip.Celine}) || !reflect.DeepEqual(invalid, []string{"atlantis"}) {
		t.Fatalf("towns=%v invalid=%v", towns, invalid)
	}
	towns, invalid = ParseTowns([]string{"atlantis", "all"})
	if !reflect.DeepEqual(towns, columnOrder) || invalid != nil {
		t.Fatalf("all: towns=%v invalid=%v", towns, invalid)
	}
	want := "Invalid argument(s): atlantis. Accept: all, celine, chocolat, fergus, lenny, lednas."
	if got := InvalidTownsMessage([]string{"atlantis"}); got != want {
		t.Fatalf("message %q want %q", got, want)
	}
}
