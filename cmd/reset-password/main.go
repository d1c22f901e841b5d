package main

import (
	"flag"
	"log"

	"sgad-api/internal/config"
	"sgad-api/internal/repository"
	"sgad-api/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	email := flag.String("email", cfg.Seed.AdminEmail, "account to reset")
	newPassword := flag.String("password", cfg.Seed.AdminPassword, "new password")
	flag.Parse()

	// 2. Setup Database
	db, err := database.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatalf("user %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	if err := user.SetPassword(*newPassword); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// 5. Update, then revoke any open session
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		log.Fatalf("failed to update password in DB: %v", err)
	}
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.NewString()); err != nil {
		log.Fatalf("failed to revoke sessions: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
