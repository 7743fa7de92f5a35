package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/SchoolPulse/SP-Gateway/internal/db"
	"github.com/SchoolPulse/SP-Gateway/internal/devauth"
	"github.com/SchoolPulse/SP-Gateway/internal/seeds"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()
	devauth.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
