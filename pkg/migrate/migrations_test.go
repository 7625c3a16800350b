package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maldonadorepuestos/storefront/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestMigrationsCreateEveryTable(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations found")
	}

	var all strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		all.Write(data)
	}
	content := all.String()

	tables := []string{
		"users",
		"categories",
		"products",
		"product_images",
		"cart_items",
		"quotes",
		"quote_items",
		"orders",
		"order_items",
		"banners",
		"outbox_events",
		"outbox_dlq",
	}
	for _, table := range tables {
		if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("missing CREATE TABLE for %s", table)
		}
		if !strings.Contains(content, "DROP TABLE IF EXISTS "+table+";") {
			t.Errorf("missing DROP TABLE for %s", table)
		}
	}
}

func TestQuoteStatusCheckMatchesStatuses(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_quotes_tables.sql"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one quotes migration, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "CHECK (status IN ('pending', 'contacted', 'quoted', 'closed'))") {
		t.Error("quotes.status check constraint out of sync")
	}
}

func TestOrderStatusCheckMatchesStatuses(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_tables.sql"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one orders migration, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	want := "CHECK (status IN ('pending', 'payment_pending', 'paid', 'processing', 'shipped', 'delivered', 'cancelled'))"
	if !strings.Contains(string(data), want) {
		t.Error("orders.status check constraint out of sync")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Product Tags!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_product_tags.sql") {
		t.Fatalf("unexpected file name %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}
