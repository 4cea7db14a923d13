package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Admin username")
		email       = flag.String("email", "admin@chronoshop.local", "Admin email")
		password    = flag.String("password", "", "Admin password (generated when empty)")
		bcryptCost  = flag.Int("bcrypt-cost", 12, "Bcrypt cost for the password hash")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	plaintext := *password
	generated := false
	if plaintext == "" {
		plaintext, err = randomPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
		generated = true
	}

	hasher := auth.NewPasswordHasher(*bcryptCost)
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user, err := ensureAdmin(ctx, repo, *username, *email, hash)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := output{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
	if generated {
		out.Password = plaintext
	}

	switch strings.ToLower(*format) {
	case "plain":
		if generated {
			fmt.Println(plaintext)
		} else {
			fmt.Println(user.ID)
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

// ensureAdmin creates the admin account, or promotes an existing user
// with the same username. The password is only set on creation.
func ensureAdmin(ctx context.Context, repo *repository.Repository, username, email, hash string) (*model.User, error) {
	existing, err := repo.GetUserByUsername(ctx, username)
	if err == nil {
		if existing.Email != email {
			return nil, fmt.Errorf("user %s exists with different email: %s", username, existing.Email)
		}
		if !existing.IsAdmin {
			existing.IsAdmin = true
			if err := repo.UpdateUser(ctx, existing); err != nil {
				return nil, fmt.Errorf("promote user: %w", err)
			}
		}
		return existing, nil
	}

	if byEmail, err := repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s already used by user %s", email, byEmail.Username)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             ulid.Make().String(),
		Username:       username,
		Email:          email,
		FullName:       "Store Administrator",
		HashedPassword: hash,
		IsActive:       true,
		IsAdmin:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func randomPassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
