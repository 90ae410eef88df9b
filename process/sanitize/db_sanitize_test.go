package sanitize

import "testing"

func TestValidTables(t *testing.T) {
	got := ValidTables(" tip_entries, ,bad-name,refresh_tokens;drop,_x1 ")
	if len(got) != 2 || got[0] != "tip_entries" || got[1] != "_x1" {
		t.Fatalf("unexpected tables: %v", got)
	}
}

func TestTruncateStatement(t *testing.T) {
	got := TruncateStatement([]string{"tip_entries", "refresh_tokens"})
	want := `TRUNCATE TABLE "tip_entries", "refresh_tokens" RESTART IDENTITY CASCADE`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
