package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"library-lending-service/internal/config"
	"library-lending-service/internal/firebase"
)

// Creates a staff account allowed to manage the catalog, or grants the
// staff role to an existing Firebase user with -uid.
func main() {
	email := flag.String("email", "", "email of the new staff account")
	password := flag.String("password", "", "password of the new staff account")
	name := flag.String("name", "Library Staff", "display name of the new staff account")
	uid := flag.String("uid", "", "grant the staff role to this existing user instead")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system environment")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	client, err := firebase.NewClient(ctx, cfg.Firebase)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer client.Close()

	if *uid != "" {
		if err := client.GrantStaffRole(ctx, *uid); err != nil {
			log.Fatalf("Failed to grant staff role: %v", err)
		}
		fmt.Printf("Granted role %q to %s\n", firebase.StaffRole, *uid)
		return
	}

	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required unless -uid is given")
	}

	newUID, err := client.CreateStaffUser(ctx, *email, *password, *name)
	if err != nil {
		log.Fatalf("Failed to create staff account: %v", err)
	}

	fmt.Printf("Created staff account %s (UID: %s)\n", *email, newUID)
	fmt.Println("Sign in with Firebase Auth and send the ID token as a Bearer token to POST /books.")
}
