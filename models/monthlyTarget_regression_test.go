package models

import (
	"context"
	"testing"

	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/shopspring/decimal"
)

func TestBatchUpsertCreatesAndUpdates(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	first := mustCreateBooker(t, "Umar")
	second := mustCreateBooker(t, "Waqar")

	created, err := BatchUpsertMonthlyTargets(ctx, []*NewMonthlyTarget{
		{OrderBookerId: first.ID, Year: 2025, Month: 7, TargetAmount: decimal.RequireFromString("100000")},
		{OrderBookerId: second.ID, Year: 2025, Month: 7, TargetAmount: decimal.RequireFromString("200000")},
	})
	if err != nil {
		t.Fatalf("batch upsert: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("batch upsert returned %d targets, want 2", len(created))
	}

	updated, err := BatchUpsertMonthlyTargets(ctx, []*NewMonthlyTarget{
		{OrderBookerId: first.ID, Year: 2025, Month: 7, TargetAmount: decimal.RequireFromString("150000")},
	})
	if err != nil {
		t.Fatalf("batch upsert update: %v", err)
	}
	assertDecimal(t, "updated target_amount", updated[0].TargetAmount, "150000")
	assertDecimal(t, "updated remaining_amount", updated[0].RemainingAmount, "150000")

	rows, err := GetTargetsByMonth(ctx, 2025, 7)
	if err != nil {
		t.Fatalf("get targets by month: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("month has %d target rows after upsert, want 2", len(rows))
	}
}

// A write failure mid-batch must surface as an error and leave no rows behind.
func TestBatchUpsertSurfacesWriteFailure(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Yasir")

	db := config.GetDB()
	if err := db.Exec(`CREATE TRIGGER reject_target_writes BEFORE INSERT ON monthly_targets
		BEGIN SELECT RAISE(ABORT, 'target writes rejected'); END`).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	targets, err := BatchUpsertMonthlyTargets(ctx, []*NewMonthlyTarget{
		{OrderBookerId: booker.ID, Year: 2025, Month: 7, TargetAmount: decimal.RequireFromString("1000")},
	})
	if err == nil {
		t.Fatal("batch upsert reported success despite failed insert")
	}
	if targets != nil {
		t.Fatalf("batch upsert returned %d targets despite failure", len(targets))
	}

	if err := db.Exec(`DROP TRIGGER reject_target_writes`).Error; err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	rows, err := GetTargetsByMonth(ctx, 2025, 7)
	if err != nil {
		t.Fatalf("get targets by month: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("failed batch left %d target rows", len(rows))
	}
}

func TestCopyTargetsFromPreviousMonth(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Zahid")
	if _, err := CreateMonthlyTarget(ctx, &NewMonthlyTarget{
		OrderBookerId: booker.ID,
		Year:          2025,
		Month:         12,
		TargetAmount:  decimal.RequireFromString("500000"),
	}); err != nil {
		t.Fatalf("create december target: %v", err)
	}

	copied, err := CopyTargetsFromPreviousMonth(ctx, 2026, 1)
	if err != nil {
		t.Fatalf("copy targets: %v", err)
	}
	if len(copied) != 1 {
		t.Fatalf("copied %d targets, want 1", len(copied))
	}
	target := copied[0]
	if target.Year != 2026 || target.Month != 1 {
		t.Fatalf("copied target is for %d-%d, want 2026-1", target.Year, target.Month)
	}
	assertDecimal(t, "copied target_amount", target.TargetAmount, "500000")

	again, err := CopyTargetsFromPreviousMonth(ctx, 2026, 1)
	if err != nil {
		t.Fatalf("second copy: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second copy created %d targets, want 0", len(again))
	}
}
