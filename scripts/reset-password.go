// Command reset-password sets a user's password directly in the database,
// creating the user when asked. It reads the same DB_* and DATABASE_URL
// settings as the server.
//
//	go run ./scripts -username paulina -password 'nueva-clave'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/agendacitas/agenda/internal/config"
	"github.com/agendacitas/agenda/internal/repository"
	"github.com/agendacitas/agenda/internal/service"
)

type output struct {
	Username string `json:"username"`
	Created  bool   `json:"created"`
	Driver   string `json:"driver"`
}

func main() {
	var (
		username = flag.String("username", "", "User whose password is reset")
		password = flag.String("password", os.Getenv("RESET_PASSWORD"), "New password (or RESET_PASSWORD)")
		create   = flag.Bool("create", false, "Create the user if it does not exist")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := repository.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		MaxConns: 1,
	}
	if cfg.DBDriver == config.DriverPostgres {
		opts.DatabaseURL = cfg.PostgresDSN()
	}

	store, err := repository.Open(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "apply schema:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewAuthService(store, nil, logger)

	created, err := svc.ResetPassword(ctx, *username, *password, *create)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			err = fmt.Errorf("user %q does not exist; pass -create to add it", *username)
		}
		fmt.Fprintln(os.Stderr, "reset password:", err)
		os.Exit(1)
	}

	out := output{
		Username: strings.TrimSpace(*username),
		Created:  created,
		Driver:   cfg.DBDriver,
	}

	switch strings.ToLower(*format) {
	case "plain":
		if out.Created {
			fmt.Printf("user %s created\n", out.Username)
		} else {
			fmt.Printf("password for %s updated\n", out.Username)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
