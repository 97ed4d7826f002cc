// cmd/adduser/main.go
//
// Operator tool: creates a management API user with a bcrypt-hashed password.
//
//	adduser -username admin -password 'secret'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"svpay-balance/internal/config"
	"svpay-balance/internal/domain"
	"svpay-balance/internal/repository/postgres"
	"svpay-balance/internal/util"
	"svpay-balance/pkg/db"
)

// bcrypt truncates beyond 72 bytes; reject instead of silently truncating.
const maxPasswordBytes = 72

func main() {
	username := flag.String("username", "", "username for the new user")
	password := flag.String("password", "", "password for the new user")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "both -username and -password are required")
		flag.Usage()
		os.Exit(2)
	}
	if len(*password) > maxPasswordBytes {
		fmt.Fprintf(os.Stderr, "password too long: max %d bytes\n", maxPasswordBytes)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	if err := postgres.EnsureSchema(ctx, database); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure database schema: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(database)
	user := domain.NewUser(*username, string(hash))
	if err := userRepo.CreateUser(ctx, database, user); err != nil {
		if util.IsError(err, util.ErrDuplicateUser) {
			fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("user %q created\n", *username)
}
