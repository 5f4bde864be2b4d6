// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev admin (admin@example.org) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/NaderBhrr/NodeBB/internal/config"
	"github.com/NaderBhrr/NodeBB/internal/db"
	privrepo "github.com/NaderBhrr/NodeBB/internal/privileges/repository"
	"github.com/NaderBhrr/NodeBB/internal/security"
	"github.com/NaderBhrr/NodeBB/internal/users/domain"
	usersrepo "github.com/NaderBhrr/NodeBB/internal/users/repository"
)

const (
	adminEmail  = "admin@example.org"
	devPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := usersrepo.NewPostgresRepository(conn)
	moderators := privrepo.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@example.org exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := &domain.User{
		Username:       "admin",
		Userslug:       "admin",
		Email:          adminEmail,
		PasswordHash:   passwordHash,
		IsAdmin:        true,
		EmailConfirmed: true,
	}
	alice := &domain.User{
		Username:       "alice",
		Userslug:       "alice",
		Email:          "alice@example.org",
		PasswordHash:   passwordHash,
		EmailConfirmed: true,
		GdprConsent:    true,
	}
	bob := &domain.User{
		Username:     "bob",
		Userslug:     "bob",
		Email:        "bob@example.org",
		PasswordHash: passwordHash,
		IsGlobalMod:  true,
	}
	for _, u := range []*domain.User{admin, alice, bob} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", u.Username, err)
		}
	}

	// bob moderates category 1 so the moderation-note fallback path is exercisable.
	if err := moderators.AddModerator(ctx, bob.UID, 1); err != nil {
		log.Fatalf("add moderator: %v", err)
	}

	if err := users.Follow(ctx, alice.UID, bob.UID); err != nil {
		log.Fatalf("follow: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminEmail, devPassword)
	fmt.Printf("User logins: alice@example.org, bob@example.org / %s\n", devPassword)
}
