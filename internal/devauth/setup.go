package devauth

import (
	"log"

	"github.com/SchoolPulse/SP-Gateway/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "dev_auth"); err != nil {
		log.Fatal("Failed to ensure schema dev_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &TokenPair{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
