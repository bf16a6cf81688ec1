package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/app"
	"github.com/Mojasagwe/taxiRankApp/internal/config"
	"github.com/Mojasagwe/taxiRankApp/internal/storage"
)

// Credential store smoke test: verifies the configured backend can
// round-trip a session pair before the client is pointed at it.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	fmt.Printf("Credential store check (backend: %s)\n", cfg.StorageBackend)

	container, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	store := container.Store

	probe := &domain.User{ID: 1, Email: "probe@example.com", Role: domain.RoleUser}
	if err := storage.SaveCredentials(ctx, store, "probe-token", probe); err != nil {
		log.Fatalf("write failed: %v", err)
	}
	fmt.Println("write ok")

	creds, err := storage.LoadCredentials(ctx, store)
	if err != nil {
		log.Fatalf("read failed: %v", err)
	}
	if creds == nil || creds.Token != "probe-token" || creds.User == nil || creds.User.ID != probe.ID {
		log.Fatalf("round trip mismatch: %+v", creds)
	}
	fmt.Println("read ok")

	if err := storage.ClearCredentials(ctx, store); err != nil {
		log.Fatalf("clear failed: %v", err)
	}
	if creds, err := storage.LoadCredentials(ctx, store); err != nil || creds != nil {
		log.Fatalf("store not empty after clear: (%+v, %v)", creds, err)
	}
	fmt.Println("clear ok")

	fmt.Println("credential store is ready")
}
