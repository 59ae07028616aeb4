package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsgallups/rust-atlanta/internal/auth"
	"github.com/dsgallups/rust-atlanta/internal/presave"
	"github.com/dsgallups/rust-atlanta/internal/repository"
	"github.com/dsgallups/rust-atlanta/internal/service"
)

type output struct {
	UserID      string `json:"user_id"`
	CredID      string `json:"credential_id"`
	Email       string `json:"email"`
	APIKey      string `json:"api_key"`
	Verified    bool   `json:"verified"`
	VerifyToken string `json:"verification_token,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@rust-atlanta.local", "User email")
		name        = flag.String("name", "admin", "Display name")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Account password (min 8 characters)")
		verify      = flag.Bool("verify", true, "Confirm the email immediately")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "password is required (-password or BOOTSTRAP_PASSWORD)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := auth.NewTokenGenerator(auth.DefaultTokenPrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token generator:", err)
		os.Exit(1)
	}
	repo, err := repository.New(ctx, *databaseURL, presave.New(tokens))
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	svc := service.NewAuthService(service.AuthServiceConfig{
		Users:  repo,
		Hasher: auth.NewPasswordHasher(auth.DefaultPasswordParams),
		Tokens: tokens,
	})

	user, cred, err := svc.Register(ctx, service.RegisterInput{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "register user:", err)
		os.Exit(1)
	}

	out := output{
		UserID: user.ID,
		CredID: cred.ID.String(),
		Email:  user.Email,
		APIKey: cred.APIKey,
	}

	if *verify {
		if _, err := svc.VerifyEmail(ctx, user.EmailVerificationToken); err != nil {
			fmt.Fprintln(os.Stderr, "verify email:", err)
			os.Exit(1)
		}
		out.Verified = true
	} else {
		out.VerifyToken = user.EmailVerificationToken
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.APIKey)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
