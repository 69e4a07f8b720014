package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"rationdist/config"
	"rationdist/database"
	"rationdist/process/report"
)

func main() {
	date := flag.String("date", "", "day to report (YYYY-MM-DD, default today)")
	list := flag.Bool("list", false, "list matching rows")
	cfgPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	day, err := report.ParseDay(*date, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	db, err := database.Open(cfg.DB, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}

	if err := report.RunReport(context.Background(), os.Stdout, db, day, *list); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}
