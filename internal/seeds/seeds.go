// Package seeds populates the dev auth service with one account per role so
// a fresh checkout can exercise every guarded subtree.
package seeds

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/SchoolPulse/SP-Gateway/internal/db"
	"github.com/SchoolPulse/SP-Gateway/internal/devauth"
	"github.com/SchoolPulse/SP-Gateway/internal/roles"
)

// DefaultPassword is the well-known password for every seeded dev account.
const DefaultPassword = "DevPass123!"

func SeedAll() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	for _, role := range roles.All {
		username := string(role) + "1"

		var existing devauth.User
		if err := db.DB.First(&existing, "username = ?", username).Error; err == nil {
			log.Printf("[seeds] %s already exists, skipping", username)
			continue
		}

		user := devauth.User{
			UserID:         uuid.New().String(),
			Username:       username,
			HashedPassword: string(hashed),
			FullName:       "Dev " + string(role),
			Email:          username + "@school.example",
			GrantedRoles:   pq.StringArray{string(role)},
		}
		if err := db.DB.Create(&user).Error; err != nil {
			return fmt.Errorf("create %s: %w", username, err)
		}
		log.Printf("[seeds] created %s role=%s", username, role)
	}
	return nil
}
