package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/app"
	"github.com/Mojasagwe/taxiRankApp/internal/config"
)

func main() {
	// A missing .env is fine; the config file and real env still apply.
	_ = godotenv.Load()

	email := flag.String("email", "", "log in with this email")
	password := flag.String("password", "", "log in with this password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	container, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	if err := container.SessionSvc.Restore(ctx); err != nil {
		log.Fatalf("restore session: %v", err)
	}

	if *email != "" {
		user, err := container.SessionSvc.Login(ctx, domain.LoginRequest{
			Email:    *email,
			Password: *password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("logged in as %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	}

	user := container.SessionSvc.CurrentUser()
	root := container.PolicySvc.RootFor(user)
	switch root {
	case domain.RootAuth:
		fmt.Println("no active session; route: auth")
	default:
		fmt.Printf("active session for %s (%s); route: %s\n", user.Email, user.Role, root)
	}
}
