package integration

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"testing"
	"time"

	"tiendita/internal/config"
	"tiendita/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, connects through the
// production pool setup and applies the store schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	u, err := url.Parse(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("failed to parse mapped port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            u.Hostname(),
		Port:            port,
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProduct inserts one product and returns its generated ID.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, price decimal.Decimal, stock int) int64 {
	t.Helper()

	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock, season)
		VALUES ($1, '', $2, $3, '')
		RETURNING id
	`, name, price, stock).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}

	return id
}

// SeedProducts inserts a small default catalogue and returns the IDs keyed
// by product name.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) map[string]int64 {
	t.Helper()

	products := []struct {
		name  string
		price string
		stock int
	}{
		{"Apple", "1.50", 10},
		{"Pear", "2.25", 8},
		{"Melon", "4.00", 3},
		{"Quince", "3.10", 1},
	}

	ids := make(map[string]int64, len(products))
	for _, p := range products {
		ids[p.name] = SeedProduct(t, pool, p.name, decimal.RequireFromString(p.price), p.stock)
	}

	return ids
}

// SeedUser inserts a user with a known bcrypt hash bypassing registration.
func SeedUser(t *testing.T, pool *pgxpool.Pool, name, email, passwordHash, role string) int64 {
	t.Helper()

	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, email, passwordHash, role).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}

	return id
}

// ProductStock reads a product's current stock directly.
func ProductStock(t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for product %d: %v", productID, err)
	}

	return stock
}

// CountRows counts the rows of a table, optionally filtered by user.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}

	return count
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_lines", "orders", "cart_lines", "sessions", "users", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
