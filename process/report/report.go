// Package report prints the tip ledger as a turn by town sheet.
package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stonktip/pkg/ledger"
	"stonktip/pkg/tip"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// Sheet lays tips out with one row per target turn and one column per town.
// Rows run from the smallest to the largest recorded target turn; missing cells are "-".
func Sheet(tips []tip.Tip) [][]string {
	header := []string{"Turn"}
	col := map[tip.HeroTown]int{}
	for i, town := range tip.Towns() {
		header = append(header, town.String())
		col[town] = i + 1
	}
	byTurn := map[int][]string{}
	for _, t := range tips {
		c, ok := col[t.HeroTown]
		if !ok {
			continue
		}
		row, ok := byTurn[t.TargetTurn]
		if !ok {
			row = make([]string, len(header))
			row[0] = fmt.Sprintf("T%d", t.TargetTurn)
			for i := 1; i < len(row); i++ {
				row[i] = "-"
			}
			byTurn[t.TargetTurn] = row
		}
		row[c] = ledger.Cell(t)
	}
	if len(byTurn) == 0 {
		return [][]string{header}
	}
	turns := make([]int, 0, len(byTurn))
	for turn := range byTurn {
		turns = append(turns, turn)
	}
	sort.Ints(turns)
	out := [][]string{header}
	for turn := turns[0]; turn <= turns[len(turns)-1]; turn++ {
		row, ok := byTurn[turn]
		if !ok {
			row = make([]string, len(header))
			row[0] = fmt.Sprintf("T%d", turn)
			for i := 1; i < len(row); i++ {
				row[i] = "-"
			}
		}
		out = append(out, row)
	}
	return out
}

// Render writes Sheet(tips) as aligned columns.
func Render(w io.Writer, tips []tip.Tip) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range Sheet(tips) {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// RunReport prints the sheet for town (empty for all towns) and optionally lists source URLs.
func RunReport(town string, list bool) {
	gdb := mustDBFromEnv()

	f := ledger.Filter{}
	if town != "" {
		h, ok := tip.ParseHeroTown(town)
		if !ok {
			log.Fatalf("unknown town %q", town)
		}
		f.Town = h
	}
	tips, err := ledger.New(gdb).List(context.Background(), f)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	fmt.Printf("Ledger: %d tips\n", len(tips))
	if err := Render(os.Stdout, tips); err != nil {
		log.Fatalf("render: %v", err)
	}
	if list {
		for _, t := range tips {
			fmt.Printf("%s|%s\n", t, t.SourceURL)
		}
	}
}
