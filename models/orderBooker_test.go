package models

import (
	"context"
	"testing"
	"time"

	"github.com/salesbookhq/salesbook_backend/utils"
)

func TestBookerAndCompanyRejectInvalidEmail(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	if _, err := CreateOrderBooker(ctx, &NewOrderBooker{
		Name:     "Aslam",
		NameUrdu: "Aslam",
		Phone:    "+923001234567",
		Email:    "not-an-email",
		JoinDate: date(2024, time.January, 1),
	}); err == nil {
		t.Fatal("booker create accepted invalid email")
	}
	if _, err := CreateCompany(ctx, &NewCompany{
		Name:  "Metro Traders",
		Email: "missing-domain@",
	}); err == nil {
		t.Fatal("company create accepted invalid email")
	}

	booker := mustCreateBooker(t, "Basit")
	bad := "no-tld@host"
	if _, err := UpdateOrderBooker(ctx, booker.ID, &UpdateOrderBookerInput{Email: &bad}); err == nil {
		t.Fatal("booker update accepted invalid email")
	}
	good := "basit@example.com"
	if _, err := UpdateOrderBooker(ctx, booker.ID, &UpdateOrderBookerInput{Email: &good}); err != nil {
		t.Fatalf("booker update rejected valid email: %v", err)
	}
}

func TestActiveOnlyListingSkipsDeactivatedBookers(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	active := mustCreateBooker(t, "Faisal")
	retired := mustCreateBooker(t, "Ghaffar")
	if _, err := UpdateOrderBooker(ctx, retired.ID, &UpdateOrderBookerInput{
		IsActive: utils.NewFalse(),
	}); err != nil {
		t.Fatalf("deactivate booker: %v", err)
	}

	activeOnly, err := GetOrderBookers(ctx, true)
	if err != nil {
		t.Fatalf("get active bookers: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != active.ID {
		t.Fatalf("active listing has %d bookers, want only %s", len(activeOnly), active.Name)
	}

	everyone, err := GetOrderBookers(ctx, false)
	if err != nil {
		t.Fatalf("get all bookers: %v", err)
	}
	if len(everyone) != 2 {
		t.Fatalf("full listing has %d bookers, want 2", len(everyone))
	}
}
