package main

import (
	"flag"
	"fmt"
	"log"

	"rationdist/auth"
	"rationdist/config"
	"rationdist/database"
	"rationdist/models"
)

func main() {
	username := flag.String("username", "", "distributor to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	cfgPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("-username and -password are required")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.DB, nil)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	var d models.Distributor
	if err := db.Where("username = ?", *username).First(&d).Error; err != nil {
		log.Fatalf("distributor not found: %v", err)
	}
	if err := db.Model(&d).Update("hashed_password", hash).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("Password reset for distributor %s\n", d.Username)
}
