package models

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	setupTestDB(t)
	db := config.GetDB()

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	want := migrationList()[len(migrationList())-1].Version
	if version != want {
		t.Fatalf("schema version = %d, want %d", version, want)
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	again, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if again != version {
		t.Fatalf("schema version changed on re-run: %d -> %d", version, again)
	}
}

func TestMigrationRejectsUnknownRecordedVersion(t *testing.T) {
	setupTestDB(t)
	db := config.GetDB()

	if err := db.Exec(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (99, 'from_a_newer_build', ?)`,
		time.Now().UTC()).Error; err != nil {
		t.Fatalf("insert foreign version: %v", err)
	}

	err := RunMigrations(db)
	if !errors.Is(err, utils.ErrorMigrationOutOfOrder) {
		t.Fatalf("migration against unknown recorded version: err = %v, want ErrorMigrationOutOfOrder", err)
	}
}

func TestMigrationRejectsGappedHistory(t *testing.T) {
	setupTestDB(t)
	db := config.GetDB()

	if err := db.Exec(`DELETE FROM schema_migrations WHERE version = 3`).Error; err != nil {
		t.Fatalf("delete recorded version: %v", err)
	}

	err := RunMigrations(db)
	if !errors.Is(err, utils.ErrorMigrationOutOfOrder) {
		t.Fatalf("migration against gapped history: err = %v, want ErrorMigrationOutOfOrder", err)
	}
}

// A database stopped at the flat daily-entries shape must come forward with a
// synthetic line item per flat row, priced off the placeholder product, and
// header totals carried over unchanged.
func TestLegacyFlatEntriesTransformToLineItems(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	if err := config.ConnectDatabaseAt(dbPath); err != nil {
		t.Fatalf("connect database: %v", err)
	}
	db := config.GetDB()

	steps := migrationList()
	if err := ApplyMigrations(db, steps[:8]); err != nil {
		t.Fatalf("apply legacy migrations: %v", err)
	}

	now := time.Now().UTC()
	if err := db.Exec(`INSERT INTO order_bookers (id, name, name_urdu, phone, email, join_date, is_active, created_at, updated_at)
		VALUES ('ob1', 'Legacy Booker', 'Legacy', '+923001234567', NULL, ?, 1, ?, ?)`,
		date(2024, time.January, 1), now, now).Error; err != nil {
		t.Fatalf("insert legacy booker: %v", err)
	}
	if err := db.Exec(`INSERT INTO daily_entries (id, order_booker_id, date, sales, returns, net_sales, notes, created_at, updated_at, total_carton, return_carton)
		VALUES ('de1', 'ob1', ?, 1200, 200, 1000, 'old note', ?, ?, 10, 3)`,
		date(2025, time.March, 4), now, now).Error; err != nil {
		t.Fatalf("insert legacy entry: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrate forward: %v", err)
	}

	ctx := context.Background()
	entry, err := GetDailyEntryWithItems(ctx, "de1")
	if err != nil {
		t.Fatalf("read transformed entry: %v", err)
	}
	assertDecimal(t, "carried total_amount", entry.TotalAmount, "1200")
	assertDecimal(t, "carried total_return_amount", entry.TotalReturnAmount, "200")
	assertDecimal(t, "carried net_amount", entry.NetAmount, "1000")
	if entry.Notes != "old note" {
		t.Fatalf("carried notes = %q, want %q", entry.Notes, "old note")
	}

	if len(entry.Items) != 1 {
		t.Fatalf("transformed entry has %d items, want 1", len(entry.Items))
	}
	item := entry.Items[0]
	if item.ProductId != migrationProductId {
		t.Fatalf("synthetic item product = %s, want %s", item.ProductId, migrationProductId)
	}
	if item.QuantitySold != 10 || item.QuantityReturned != 3 || item.NetQuantity != 7 {
		t.Fatalf("synthetic item quantities = %d/%d/%d, want 10/3/7",
			item.QuantitySold, item.QuantityReturned, item.NetQuantity)
	}
	assertDecimal(t, "synthetic item total_cost", item.TotalCost, "700")
	assertDecimal(t, "synthetic item total_revenue", item.TotalRevenue, "1200")

	product, err := GetProduct(ctx, migrationProductId)
	if err != nil {
		t.Fatalf("placeholder product missing: %v", err)
	}
	if product.CompanyId != migrationCompanyId {
		t.Fatalf("placeholder product company = %s, want %s", product.CompanyId, migrationCompanyId)
	}
	assertDecimal(t, "placeholder cost_price", product.CostPrice, "100")
	assertDecimal(t, "placeholder sell_price", product.SellPrice, "120")
}

// A fresh database with no legacy rows must not grow the placeholder
// company/product.
func TestFreshDatabaseHasNoPlaceholderCatalog(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	if _, err := GetProduct(ctx, migrationProductId); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("placeholder product on fresh database: err = %v, want ErrorRecordNotFound", err)
	}
	if _, err := GetCompany(ctx, migrationCompanyId); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("placeholder company on fresh database: err = %v, want ErrorRecordNotFound", err)
	}
}

// Deleting a booker cascades through entries, items, orders and targets.
func TestBookerDeleteCascades(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Qasim")
	product := mustCreateProduct(t, "Tea", "100", "120", 10)

	entry, err := CreateDailyEntry(ctx, &NewDailyEntry{
		OrderBookerId: booker.ID,
		Date:          date(2025, time.July, 25),
		Items: []*NewDailyEntryItem{
			{ProductId: product.ID, QuantitySold: 10},
		},
	})
	if err != nil {
		t.Fatalf("create daily entry: %v", err)
	}
	order, err := CreateOrder(ctx, &NewOrder{
		OrderBookerId: booker.ID,
		OrderDate:     date(2025, time.July, 25),
		Items: []*NewOrderItem{
			{ProductId: product.ID, Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := DeleteOrderBooker(ctx, booker.ID); err != nil {
		t.Fatalf("delete booker: %v", err)
	}

	if _, err := GetDailyEntry(ctx, entry.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("entry survived booker delete: err = %v", err)
	}
	if _, err := GetOrder(ctx, order.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("order survived booker delete: err = %v", err)
	}
	targets, err := GetTargetsByOrderBooker(ctx, booker.ID)
	if err != nil {
		t.Fatalf("get targets: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("booker delete left %d target rows", len(targets))
	}
}
