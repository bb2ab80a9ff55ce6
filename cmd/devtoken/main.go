// Command devtoken mints a bearer token for a local user.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"traveldesk/internal/database"
	"traveldesk/internal/middleware"
	"traveldesk/internal/repository"
	"traveldesk/pkg/config"

	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "user id")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	id, err := uuid.Parse(*userID)
	if err != nil {
		log.Fatalf("invalid -user: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	db, err := database.NewConnection(cfg.DSN(), false)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	users := repository.NewUserRepository(db)
	user, err := users.FindByID(context.Background(), id)
	if err != nil {
		log.Fatalf("Load user: %v", err)
	}

	auth := middleware.NewAuth([]byte(cfg.JWTSecret), users)
	token, err := auth.IssueToken(user.ID, user.Role, *ttl)
	if err != nil {
		log.Fatalf("Issue token: %v", err)
	}
	fmt.Println(token)
}
