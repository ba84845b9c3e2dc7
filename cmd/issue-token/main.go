// Command issue-token prints a bearer token for a user, creating the user on
// first use.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/safar/go-sql-shop/internal/auth"
	"github.com/safar/go-sql-shop/internal/config"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/store"
)

func main() {
	email := flag.String("email", "", "user email (required)")
	name := flag.String("name", "", "user name, used when the user is created")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Usage: issue-token -email user@example.com [-name \"Jane Doe\"]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		stdlog.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := store.GetUserByEmail(ctx, db, *email)
	if errors.Is(err, database.ErrUserNotFound) {
		user, err = store.CreateUser(ctx, db, *email, *name)
	}
	if err != nil {
		stdlog.Fatalf("Resolve user: %v", err)
	}

	token, err := auth.NewTokens(cfg.Auth).Issue(user.ID)
	if err != nil {
		stdlog.Fatalf("Issue token: %v", err)
	}

	fmt.Println(token)
}
