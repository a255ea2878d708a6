package main

import (
	"context"
	"fmt"
	"os"

	"tiendita/internal/config"
	"tiendita/internal/database"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a development database: applies the schema, creates an admin
// account and loads a small catalogue. Safe to run repeatedly.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	adminEmail := getEnv("SEED_ADMIN_EMAIL", "admin@tiendita.local")
	adminPassword := getEnv("SEED_ADMIN_PASSWORD", "change-me-now")

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	tag, err := pool.Exec(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ('Admin', $1, $2, 'admin')
		ON CONFLICT (email) DO NOTHING
	`, adminEmail, string(hash))
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if tag.RowsAffected() > 0 {
		logger.Info().Str("email", adminEmail).Msg("admin account created")
	} else {
		logger.Info().Str("email", adminEmail).Msg("admin account already exists")
	}

	var productCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&productCount); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if productCount > 0 {
		logger.Info().Int("count", productCount).Msg("catalogue already seeded, skipping")
		return nil
	}

	products := []struct {
		name        string
		description string
		price       string
		stock       int
		season      string
	}{
		{"Heirloom Tomatoes", "Mixed varieties, sold by the kilo", "4.50", 40, "summer"},
		{"Hass Avocados", "Ready to eat within two days", "2.20", 60, "summer"},
		{"Butternut Squash", "Whole, roughly 1.2 kg each", "3.10", 25, "autumn"},
		{"Quince Jam", "Small batch, 250 g jar", "6.75", 12, "autumn"},
		{"Blood Oranges", "Bag of six", "5.40", 30, "winter"},
		{"Chestnuts", "Fresh, 500 g net", "7.90", 18, "winter"},
		{"Asparagus Bunch", "Green, trimmed", "4.80", 22, "spring"},
		{"Strawberries", "500 g punnet", "3.95", 35, "spring"},
	}

	for _, p := range products {
		price := decimal.RequireFromString(p.price)
		_, err := pool.Exec(ctx, `
			INSERT INTO products (name, description, price, stock, season)
			VALUES ($1, $2, $3, $4, $5)
		`, p.name, p.description, price, p.stock, p.season)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
	}

	logger.Info().Int("count", len(products)).Msg("catalogue seeded")

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
