package integration

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	testUserID   = int64(42)
	teaID        = int64(1)
	coffeeID     = int64(2)
	warehouseID  = int64(1)
	storefrontID = int64(2)
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	if err := runMigrations(dsn); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	seedCatalog(t, db)

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// runMigrations applies migrations/ on its own connection; closing the
// migrator closes that connection too.
func runMigrations(dsn string) error {
	path, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	m, err := database.NewMigrator(db, path, zap.NewNop())
	if err != nil {
		db.Close()
		return err
	}
	defer m.Close()

	return m.Up()
}

func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()

	statements := []string{
		`INSERT INTO users (telegram_id, language_code) VALUES (42, 'en'), (43, 'ru')`,
		`INSERT INTO categories (id, name) VALUES (1, 'Drinks')`,
		`INSERT INTO category_localization (category_id, language_code, name) VALUES (1, 'ru', 'Напитки')`,
		`INSERT INTO manufacturers (id, name) VALUES (1, 'Acme')`,
		`INSERT INTO products (id, name, price, category_id, manufacturer_id) VALUES
			(1, 'Tea', 10.00, 1, 1),
			(2, 'Coffee', 5.50, 1, NULL)`,
		`INSERT INTO product_localization (product_id, language_code, name, description) VALUES
			(1, 'ru', 'Чай', 'Чёрный чай')`,
		`INSERT INTO locations (id, name, address) VALUES (1, 'Warehouse', 'Main st 1'), (2, 'Storefront', NULL)`,
		`INSERT INTO product_stock (product_id, location_id, quantity) VALUES (1, 1, 12), (1, 2, 3), (2, 1, 7)`,
		`SELECT setval('products_id_seq', 2), setval('locations_id_seq', 2), setval('categories_id_seq', 1)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Seed catalog: %v\n%s", err, stmt)
		}
	}
}
