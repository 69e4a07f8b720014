package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"rationdist/config"
	"rationdist/database"
	"rationdist/pkg/logger"
	"rationdist/process/sanitize"

	"go.uber.org/zap"
)

func main() {
	var (
		dryRun  = flag.Bool("dry-run", true, "show what would be cleared without changing anything")
		yes     = flag.Bool("yes", false, "confirm the destructive run")
		reseed  = flag.Bool("reseed", false, "recreate the admin distributor and demo beneficiaries afterwards")
		tables  = flag.String("tables", strings.Join(sanitize.DefaultTables, ","), "comma separated tables to clear")
		cfgPath = flag.String("config", ".", "directory holding config.yaml")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl := logger.Must(logger.New("debug"))
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg.DB, zl)
	if err != nil {
		zl.Fatal("open db", zap.Error(err))
	}

	wanted := sanitize.ParseTables(*tables, zl)
	plan := sanitize.Plan(db, wanted)
	if len(plan) == 0 {
		fmt.Println("no requested tables present in the database; nothing to do")
		return
	}
	fmt.Println("Tables considered for clearing:")
	for _, t := range plan {
		fmt.Printf(" - %s\n", t)
	}
	if *dryRun {
		fmt.Println("dry-run enabled; use -dry-run=false -yes to execute.")
		return
	}
	if !*yes {
		fmt.Println("destructive operation, pass -yes to confirm. Aborting.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	opts := sanitize.Options{Tables: plan, Reseed: *reseed, Seed: cfg.Seed}
	if _, err := sanitize.Run(ctx, db, opts, zl); err != nil {
		zl.Fatal("sanitize failed", zap.Error(err))
	}
	fmt.Println("done.")
}
