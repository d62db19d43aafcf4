package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := config.ConnectDatabaseAt(dbPath); err != nil {
		t.Fatalf("connect database: %v", err)
	}
	if err := RunMigrations(config.GetDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func mustCreateBooker(t *testing.T, name string) *OrderBooker {
	t.Helper()
	booker, err := CreateOrderBooker(context.Background(), &NewOrderBooker{
		Name:     name,
		NameUrdu: name,
		Phone:    "+923001234567",
		JoinDate: date(2024, time.January, 1),
	})
	if err != nil {
		t.Fatalf("create order booker: %v", err)
	}
	return booker
}

func mustCreateProduct(t *testing.T, name string, costPrice, sellPrice string, unitPerCarton int) *Product {
	t.Helper()
	ctx := context.Background()
	company, err := CreateCompany(ctx, &NewCompany{Name: name + " Co"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	product, err := CreateProduct(ctx, &NewProduct{
		CompanyId:     company.ID,
		Name:          name,
		CostPrice:     decimal.RequireFromString(costPrice),
		SellPrice:     decimal.RequireFromString(sellPrice),
		UnitPerCarton: unitPerCarton,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", label, got.String(), want)
	}
}
