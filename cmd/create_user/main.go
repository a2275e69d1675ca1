package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"nexusboard/internal/db"
	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
	"nexusboard/internal/service"
)

func main() {
	username := flag.String("username", "testuser", "username")
	email := flag.String("email", "testuser@example.com", "email")
	password := flag.String("password", "testpass", "password")
	flag.Parse()

	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	ctx := context.Background()
	pool := db.Connect(ctx, dsn)
	defer pool.Close()

	auth := service.NewAuthService(repository.NewStore(pool), service.NewPasswordHasher(service.DefaultBcryptCost))

	u, err := auth.Register(ctx, *username, *email, *password)
	switch {
	case err == nil:
		log.Printf("user created id=%d\n", u.ID)
	case errors.Is(err, domain.ErrConflict):
		// already there, make sure the password still matches
		u, err = auth.Login(ctx, *username, *password)
		if err != nil {
			log.Fatalf("user exists but login failed: %v", err)
		}
		log.Printf("user already exists id=%d\n", u.ID)
	default:
		log.Fatalf("create user failed: %v", err)
	}

	token, err := service.NewTokenIssuer(secret, 24*time.Hour).Generate(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("username=%s email=%s token=%s\n", u.Username, u.Email, token)
}
