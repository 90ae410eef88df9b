package tip

import (
	"encoding/json"
	"testing"
)

func TestPriceChangeOpAndAbs(t *testing.T) {
	cases := []struct {
		change int
		op     string
		abs    int
	}{
		{30, "+", 30},
		{0, "+", 0},
		{-15, "-", 15},
	}
	for _, c := range cases {
		op, abs := New(Celine, 1, 2, c.change).PriceChangeOpAndAbs()
		if op != c.op || abs != c.abs {
			t.Errorf("change %d: got (%s,%d) want (%s,%d)", c.change, op, abs, c.op, c.abs)
		}
	}
}

func TestTipString(t *testing.T) {
	got := New(Fergus, 3, 9, -12).String()
	if got != "Fergus T9 = T3 - 12" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestFailedSentinel(t *testing.T) {
	f := Failed()
	if f.Valid() {
		t.Fatalf("failed sentinel must not be valid")
	}
	if f.CurrentTurn != -1 || f.TargetTurn != -1 || f.PriceChange != 0 {
		t.Fatalf("unexpected sentinel %+v", f)
	}
	if !New(Lenny, 1, 1, 0).Valid() {
		t.Fatalf("populated tip must be valid")
	}
}

func TestParseHeroTown(t *testing.T) {
	for _, h := range Towns() {
		got, ok := ParseHeroTown(h.String())
		if !ok || got != h {
			t.Errorf("round trip %s -> %v (%v)", h, got, ok)
		}
	}
	if got, ok := ParseHeroTown(" celine "); !ok || got != Celine {
		t.Errorf("case-insensitive lookup failed: %v %v", got, ok)
	}
	if _, ok := ParseHeroTown("Unknown"); ok {
		t.Errorf("Unknown must not parse as a known town")
	}
}

func TestTipJSONUsesLabels(t *testing.T) {
	b, err := json.Marshal(New(Chocolat, 2, 4, 5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Tip
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.HeroTown != Chocolat {
		t.Fatalf("expected Chocolat, got %v (json=%s)", back.HeroTown, b)
	}
}
