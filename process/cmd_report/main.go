package main

import (
	"flag"
	"fmt"
	"os"

	"stonktip/process/report"
)

func main() {
	town := flag.String("town", "", "only report this town (default all)")
	list := flag.Bool("list", false, "list every tip with its source url")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}

	report.RunReport(*town, *list)
}
