// Package sanitize resets the ledger between seasons.
package sanitize

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stonktip/pkg/config"
	"stonktip/pkg/state"
)

// DefaultTables are truncated when -tables is not given. Accounts survive a season reset.
const DefaultTables = "tip_entries,town_prices"

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Run executes the season reset CLI. Exported so a small cmd/main can call it.
func Run() {
	var (
		dryRun   = flag.Bool("dry-run", true, "Don't perform destructive actions; show what would be done")
		yes      = flag.Bool("yes", false, "Confirm destructive action (required to actually truncate)")
		tables   = flag.String("tables", DefaultTables, "Comma-separated list of tables to truncate")
		channels = flag.String("failed-channels", "", "Comma-separated channels whose failed image lists are cleared from Redis")
	)
	flag.Parse()

	if os.Getenv("DB_DSN") == "" {
		log.Fatal("DB_DSN must be set to run the season reset")
	}
	gdb := mustInitDBFromEnv()

	existing := []string{}
	// check presence individually to avoid any injection risk
	for _, t := range ValidTables(*tables) {
		var cnt int64
		if err := gdb.Raw("SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			log.Fatalf("failed to query pg_tables for %s: %v", t, err)
		}
		if cnt > 0 {
			existing = append(existing, t)
		} else {
			log.Printf("info: table %s not found, skipping", t)
		}
	}
	chans := config.ListFromCSV(*channels)
	if len(existing) == 0 && len(chans) == 0 {
		log.Println("nothing to reset")
		return
	}

	fmt.Println("Tables considered for truncation:")
	for _, t := range existing {
		fmt.Printf(" - %s\n", t)
	}
	for _, c := range chans {
		fmt.Printf("Failed image list to clear: %s\n", c)
	}

	if *dryRun {
		fmt.Println("dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return
	}
	if !*yes {
		fmt.Println("Destructive operation. Pass --yes to confirm execution. Aborting.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if len(existing) > 0 {
		stmt := TruncateStatement(existing)
		log.Printf("Executing: %s", stmt)
		if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
			log.Fatalf("truncate failed: %v", err)
		}
		log.Println("Truncate completed.")
	}
	if len(chans) > 0 {
		if err := clearFailed(ctx, os.Getenv("REDIS_URL"), chans); err != nil {
			log.Fatalf("clear failed lists: %v", err)
		}
	}
}

// ValidTables splits csv and keeps plain SQL identifiers.
func ValidTables(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			log.Printf("warning: skipping invalid table name '%s'", p)
			continue
		}
		out = append(out, p)
	}
	return out
}

// TruncateStatement quotes already validated table names.
func TruncateStatement(tables []string) string {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, fmt.Sprintf("\"%s\"", t))
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
}

func clearFailed(ctx context.Context, redisURL string, channels []string) error {
	if redisURL == "" {
		return fmt.Errorf("REDIS_URL not set")
	}
	store, err := state.NewRedisStore(ctx, redisURL)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, c := range channels {
		urls, err := store.DrainFailed(ctx, c)
		if err != nil {
			return fmt.Errorf("channel %s: %w", c, err)
		}
		log.Printf("cleared %d failed urls for %s", len(urls), c)
	}
	return nil
}

// mustInitDBFromEnv is a light DB initializer used by this CLI.
func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}
