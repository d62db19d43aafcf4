package models

import (
	"context"
	"testing"
	"time"
)

// An order item with quantity 10 at cost 100 / sell 120, 2 returned, 5 units
// per carton must produce exactly these derived values, and the lone item's
// values must flow unchanged into the order header.
func TestOrderItemDerivedFields(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Ahmed")
	product := mustCreateProduct(t, "Biscuits", "100", "120", 5)

	order, err := CreateOrder(ctx, &NewOrder{
		OrderBookerId: booker.ID,
		OrderDate:     date(2025, time.July, 10),
		Items: []*NewOrderItem{
			{ProductId: product.ID, Quantity: 10, ReturnQuantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("order has %d items, want 1", len(order.Items))
	}

	item := order.Items[0]
	assertDecimal(t, "item total_cost", item.TotalCost, "1000")
	assertDecimal(t, "item total_amount", item.TotalAmount, "1200")
	assertDecimal(t, "item profit", item.Profit, "200")
	assertDecimal(t, "item cartons", item.Cartons, "2")
	assertDecimal(t, "item return_amount", item.ReturnAmount, "240")
	assertDecimal(t, "item return_cartons", item.ReturnCartons, "0.4")

	assertDecimal(t, "order total_cost", order.TotalCost, "1000")
	assertDecimal(t, "order total_amount", order.TotalAmount, "1200")
	assertDecimal(t, "order total_profit", order.TotalProfit, "200")
	assertDecimal(t, "order total_cartons", order.TotalCartons, "2")
	assertDecimal(t, "order return_amount", order.ReturnAmount, "240")
	assertDecimal(t, "order return_cartons", order.ReturnCartons, "0.4")
}

// A product with zero units per carton yields zero cartons; the money totals
// are unaffected.
func TestOrderItemZeroUnitPerCarton(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Bilal")
	product := mustCreateProduct(t, "Loose Candy", "10", "15", 0)

	order, err := CreateOrder(ctx, &NewOrder{
		OrderBookerId: booker.ID,
		OrderDate:     date(2025, time.July, 11),
		Items: []*NewOrderItem{
			{ProductId: product.ID, Quantity: 10, ReturnQuantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	item := order.Items[0]
	assertDecimal(t, "item cartons", item.Cartons, "0")
	assertDecimal(t, "item return_cartons", item.ReturnCartons, "0")
	assertDecimal(t, "item total_amount", item.TotalAmount, "150")
	assertDecimal(t, "item return_amount", item.ReturnAmount, "45")
}

func TestOrderRollupsFollowItemWrites(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Chaudhry")
	product := mustCreateProduct(t, "Tea", "200", "250", 10)

	order, err := CreateOrder(ctx, &NewOrder{
		OrderBookerId: booker.ID,
		OrderDate:     date(2025, time.July, 12),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	assertDecimal(t, "empty order total_amount", order.TotalAmount, "0")
	assertDecimal(t, "empty order total_cartons", order.TotalCartons, "0")

	item, err := CreateOrderItem(ctx, order.ID, &NewOrderItem{
		ProductId: product.ID,
		Quantity:  20,
	})
	if err != nil {
		t.Fatalf("create order item: %v", err)
	}

	refreshed, err := GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	assertDecimal(t, "order total_amount after add", refreshed.TotalAmount, "5000")
	assertDecimal(t, "order total_cost after add", refreshed.TotalCost, "4000")
	assertDecimal(t, "order total_profit after add", refreshed.TotalProfit, "1000")
	assertDecimal(t, "order total_cartons after add", refreshed.TotalCartons, "2")

	quantity := 8
	if _, err := UpdateOrderItem(ctx, item.ID, &UpdateOrderItemInput{Quantity: &quantity}); err != nil {
		t.Fatalf("update order item: %v", err)
	}
	refreshed, err = GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	assertDecimal(t, "order total_amount after update", refreshed.TotalAmount, "2000")
	assertDecimal(t, "order total_cartons after update", refreshed.TotalCartons, "0.8")

	if err := DeleteOrderItem(ctx, item.ID); err != nil {
		t.Fatalf("delete order item: %v", err)
	}
	refreshed, err = GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	assertDecimal(t, "order total_amount after delete", refreshed.TotalAmount, "0")
	assertDecimal(t, "order total_cost after delete", refreshed.TotalCost, "0")
	assertDecimal(t, "order total_profit after delete", refreshed.TotalProfit, "0")
	assertDecimal(t, "order total_cartons after delete", refreshed.TotalCartons, "0")
	assertDecimal(t, "order return_amount after delete", refreshed.ReturnAmount, "0")
	assertDecimal(t, "order return_cartons after delete", refreshed.ReturnCartons, "0")
}

// Re-saving an item with its current values must not drift any derived field.
func TestOrderRollupRecomputationIsIdempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Danish")
	product := mustCreateProduct(t, "Soap", "30", "45", 6)

	order, err := CreateOrder(ctx, &NewOrder{
		OrderBookerId: booker.ID,
		OrderDate:     date(2025, time.July, 13),
		Items: []*NewOrderItem{
			{ProductId: product.ID, Quantity: 9, ReturnQuantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	before, err := GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}

	quantity := 9
	returned := 1
	if _, err := UpdateOrderItem(ctx, order.Items[0].ID, &UpdateOrderItemInput{
		Quantity:       &quantity,
		ReturnQuantity: &returned,
	}); err != nil {
		t.Fatalf("update order item: %v", err)
	}

	after, err := GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !after.TotalAmount.Equal(before.TotalAmount) ||
		!after.TotalCost.Equal(before.TotalCost) ||
		!after.TotalProfit.Equal(before.TotalProfit) ||
		!after.TotalCartons.Equal(before.TotalCartons) ||
		!after.ReturnAmount.Equal(before.ReturnAmount) ||
		!after.ReturnCartons.Equal(before.ReturnCartons) {
		t.Fatalf("rollups drifted on identical rewrite: before=%+v after=%+v", before, after)
	}
}

func TestOrderStatusTransitionStampsSupplyDate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Ehsan")
	order, err := CreateOrder(ctx, &NewOrder{
		OrderBookerId: booker.ID,
		OrderDate:     date(2025, time.July, 14),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != OrderStatusPending {
		t.Fatalf("new order status = %s, want %s", order.Status, OrderStatusPending)
	}
	if order.SupplyDate != nil {
		t.Fatalf("new order has supply date %v, want nil", order.SupplyDate)
	}

	supplied, err := UpdateOrderStatus(ctx, order.ID, OrderStatusSupplied)
	if err != nil {
		t.Fatalf("update order status: %v", err)
	}
	if supplied.Status != OrderStatusSupplied {
		t.Fatalf("order status = %s, want %s", supplied.Status, OrderStatusSupplied)
	}
	if supplied.SupplyDate == nil {
		t.Fatal("supplied order has no supply date")
	}
}

func TestOrderSummaryAggregatesFilteredOrders(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	booker := mustCreateBooker(t, "Farhan")
	product := mustCreateProduct(t, "Juice", "50", "80", 12)

	for day := 1; day <= 3; day++ {
		if _, err := CreateOrder(ctx, &NewOrder{
			OrderBookerId: booker.ID,
			OrderDate:     date(2025, time.July, day),
			Items: []*NewOrderItem{
				{ProductId: product.ID, Quantity: 12},
			},
		}); err != nil {
			t.Fatalf("create order %d: %v", day, err)
		}
	}

	summary, err := GetOrderSummary(ctx, &OrderFilters{OrderBookerId: &booker.ID})
	if err != nil {
		t.Fatalf("get order summary: %v", err)
	}
	if summary.OrderCount != 3 {
		t.Fatalf("order count = %d, want 3", summary.OrderCount)
	}
	assertDecimal(t, "summary total_amount", summary.TotalAmount, "2880")
	assertDecimal(t, "summary total_cost", summary.TotalCost, "1800")
	assertDecimal(t, "summary total_profit", summary.TotalProfit, "1080")
	assertDecimal(t, "summary total_cartons", summary.TotalCartons, "3")
}
