package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"rationdist/auth"
	"rationdist/config"
	"rationdist/database"
	"rationdist/models"
)

func main() {
	name := flag.String("name", "", "display name (defaults to the username)")
	cfgPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_distributor [-name \"Full Name\"] <username> <password>")
		os.Exit(2)
	}
	username, password := flag.Arg(0), flag.Arg(1)
	if *name == "" {
		*name = username
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.DB, nil)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}); err != nil {
		log.Fatalf("migrate distributors: %v", err)
	}

	var existing models.Distributor
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("distributor %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	d, err := auth.CreateDistributor(context.Background(), db, *name, username, password)
	if err != nil {
		log.Fatalf("failed to create distributor: %v", err)
	}
	fmt.Printf("created distributor %s id=%d\n", d.Username, d.ID)
}
