package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a supply order header. Every total on it is derived from its items
// and recomputed inside the same transaction as any item write; the header is
// never trusted as an input, only overwritten.
type Order struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	OrderBookerId string          `gorm:"size:36;index;not null" json:"order_booker_id"`
	OrderDate     time.Time       `gorm:"not null" json:"order_date"`
	SupplyDate    *time.Time      `gorm:"default:null" json:"supply_date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_cost"`
	TotalProfit   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_profit"`
	TotalCartons  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_cartons"`
	ReturnCartons decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"return_cartons"`
	ReturnAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"return_amount"`
	Status        OrderStatus     `gorm:"size:16;not null;default:pending" json:"status"`
	Notes         string          `gorm:"default:null" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items []*OrderItem `gorm:"foreignKey:OrderId" json:"items,omitempty"`
}

// OrderItem freezes the product's prices at write time; later price-book edits
// do not touch existing items. TotalCost, TotalAmount, Profit, Cartons,
// ReturnAmount and ReturnCartons are derived and overwritten on every write.
type OrderItem struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	OrderId        string          `gorm:"size:36;index;not null" json:"order_id"`
	ProductId      string          `gorm:"size:36;index;not null" json:"product_id"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
	SellPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sell_price"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_cost"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_amount"`
	Profit         decimal.Decimal `gorm:"type:decimal(20,4)" json:"profit"`
	Cartons        decimal.Decimal `gorm:"type:decimal(20,4)" json:"cartons"`
	ReturnQuantity int             `gorm:"default:0" json:"return_quantity"`
	ReturnAmount   decimal.Decimal `gorm:"type:decimal(20,4)" json:"return_amount"`
	ReturnCartons  decimal.Decimal `gorm:"type:decimal(20,4)" json:"return_cartons"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrder struct {
	OrderBookerId string          `json:"order_booker_id" validate:"required"`
	OrderDate     time.Time       `json:"order_date" validate:"required"`
	SupplyDate    *time.Time      `json:"supply_date"`
	Status        *OrderStatus    `json:"status"`
	Notes         string          `json:"notes"`
	Items         []*NewOrderItem `json:"items"`
}

type NewOrderItem struct {
	ProductId      string           `json:"product_id" validate:"required"`
	Quantity       int              `json:"quantity" validate:"min=0"`
	ReturnQuantity int              `json:"return_quantity" validate:"min=0"`
	CostPrice      *decimal.Decimal `json:"cost_price"`
	SellPrice      *decimal.Decimal `json:"sell_price"`
}

type UpdateOrderInput struct {
	OrderDate  *time.Time   `json:"order_date"`
	SupplyDate *time.Time   `json:"supply_date"`
	Status     *OrderStatus `json:"status"`
	Notes      *string      `json:"notes"`
}

type UpdateOrderItemInput struct {
	Quantity       *int             `json:"quantity" validate:"omitempty,min=0"`
	ReturnQuantity *int             `json:"return_quantity" validate:"omitempty,min=0"`
	CostPrice      *decimal.Decimal `json:"cost_price"`
	SellPrice      *decimal.Decimal `json:"sell_price"`
}

type OrderFilters struct {
	OrderBookerId *string      `json:"order_booker_id"`
	Status        *OrderStatus `json:"status"`
	StartDate     *time.Time   `json:"start_date"`
	EndDate       *time.Time   `json:"end_date"`
}

type OrderSummary struct {
	OrderCount    int64           `json:"order_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	TotalCartons  decimal.Decimal `json:"total_cartons"`
	ReturnCartons decimal.Decimal `json:"return_cartons"`
	ReturnAmount  decimal.Decimal `json:"return_amount"`
}

// calculateTotals overwrites the item's derived fields from its stored
// quantities and prices. A unit-per-carton of zero (or less) produces zero
// cartons rather than an error; the quantity totals stay exact.
func (item *OrderItem) calculateTotals(unitPerCarton int) {
	quantity := decimal.NewFromInt(int64(item.Quantity))
	returnQuantity := decimal.NewFromInt(int64(item.ReturnQuantity))

	item.TotalCost = quantity.Mul(item.CostPrice)
	item.TotalAmount = quantity.Mul(item.SellPrice)
	item.Profit = item.TotalAmount.Sub(item.TotalCost)
	item.ReturnAmount = returnQuantity.Mul(item.SellPrice)

	if unitPerCarton > 0 {
		perCarton := decimal.NewFromInt(int64(unitPerCarton))
		item.Cartons = quantity.Div(perCarton)
		item.ReturnCartons = returnQuantity.Div(perCarton)
	} else {
		item.Cartons = decimal.Zero
		item.ReturnCartons = decimal.Zero
	}
}

// recalculateOrderTotals re-derives all six header rollups from the order's
// current items. An order with no items rolls up to all zeros. Must run inside
// the transaction that changed the items.
func recalculateOrderTotals(tx *gorm.DB, orderId string) error {
	var items []*OrderItem
	if err := tx.Where("order_id = ?", orderId).Find(&items).Error; err != nil {
		return err
	}

	totalAmount := decimal.Zero
	totalCost := decimal.Zero
	totalProfit := decimal.Zero
	totalCartons := decimal.Zero
	returnCartons := decimal.Zero
	returnAmount := decimal.Zero
	for _, item := range items {
		totalAmount = totalAmount.Add(item.TotalAmount)
		totalCost = totalCost.Add(item.TotalCost)
		totalProfit = totalProfit.Add(item.Profit)
		totalCartons = totalCartons.Add(item.Cartons)
		returnCartons = returnCartons.Add(item.ReturnCartons)
		returnAmount = returnAmount.Add(item.ReturnAmount)
	}

	return tx.Model(&Order{}).Where("id = ?", orderId).Updates(map[string]interface{}{
		"total_amount":   totalAmount,
		"total_cost":     totalCost,
		"total_profit":   totalProfit,
		"total_cartons":  totalCartons,
		"return_cartons": returnCartons,
		"return_amount":  returnAmount,
	}).Error
}

// buildOrderItem resolves the item's prices (explicit override, else the
// product's current price book) and computes its derived fields.
func buildOrderItem(tx *gorm.DB, orderId string, input *NewOrderItem) (*OrderItem, error) {
	var product Product
	if err := tx.Where("id = ?", input.ProductId).First(&product).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	item := OrderItem{
		ID:             uuid.NewString(),
		OrderId:        orderId,
		ProductId:      input.ProductId,
		Quantity:       input.Quantity,
		CostPrice:      utils.DereferencePtr(input.CostPrice, product.CostPrice),
		SellPrice:      utils.DereferencePtr(input.SellPrice, product.SellPrice),
		ReturnQuantity: input.ReturnQuantity,
	}
	item.calculateTotals(product.UnitPerCarton)
	return &item, nil
}

func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	for _, itemInput := range input.Items {
		if err := utils.ValidateStruct(itemInput); err != nil {
			return nil, err
		}
	}
	if err := utils.ValidateResourceId[OrderBooker](ctx, db, input.OrderBookerId); err != nil {
		return nil, err
	}

	status := OrderStatusPending
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, errors.New("invalid order status")
		}
		status = *input.Status
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order := Order{
		ID:            uuid.NewString(),
		OrderBookerId: input.OrderBookerId,
		OrderDate:     utils.BeginningOfDay(input.OrderDate),
		Status:        status,
		Notes:         input.Notes,
	}
	if input.SupplyDate != nil {
		supplyDate := utils.BeginningOfDay(*input.SupplyDate)
		order.SupplyDate = &supplyDate
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, itemInput := range input.Items {
		item, err := buildOrderItem(tx, order.ID, itemInput)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Create(item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := recalculateOrderTotals(tx, order.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetOrderWithItems(ctx, order.ID)
}

func UpdateOrder(ctx context.Context, id string, input *UpdateOrderInput) (*Order, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, errors.New("invalid order status")
	}

	var order Order
	if err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.OrderDate != nil {
		order.OrderDate = utils.BeginningOfDay(*input.OrderDate)
	}
	if input.SupplyDate != nil {
		supplyDate := utils.BeginningOfDay(*input.SupplyDate)
		order.SupplyDate = &supplyDate
	}
	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}

	if err := db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus is the supply-workflow shortcut: moving to supplied stamps
// the supply date if it was never set.
func UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (*Order, error) {
	db := config.GetDB()

	if !status.IsValid() {
		return nil, errors.New("invalid order status")
	}

	var order Order
	if err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	order.Status = status
	if status == OrderStatusSupplied && order.SupplyDate == nil {
		supplyDate := utils.BeginningOfDay(time.Now().UTC())
		order.SupplyDate = &supplyDate
	}

	if err := db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func DeleteOrder(ctx context.Context, id string) error {
	db := config.GetDB()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func GetOrder(ctx context.Context, id string) (*Order, error) {
	db := config.GetDB()

	var order Order
	if err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &order, nil
}

func GetOrderWithItems(ctx context.Context, id string) (*Order, error) {
	db := config.GetDB()

	var order Order
	if err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &order, nil
}

func GetOrders(ctx context.Context, filters *OrderFilters) ([]*Order, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Order("order_date DESC, created_at DESC")
	if filters != nil {
		if filters.OrderBookerId != nil {
			dbCtx = dbCtx.Where("order_booker_id = ?", *filters.OrderBookerId)
		}
		if filters.Status != nil {
			dbCtx = dbCtx.Where("status = ?", *filters.Status)
		}
		if filters.StartDate != nil {
			dbCtx = dbCtx.Where("order_date >= ?", utils.BeginningOfDay(*filters.StartDate))
		}
		if filters.EndDate != nil {
			dbCtx = dbCtx.Where("order_date <= ?", utils.BeginningOfDay(*filters.EndDate))
		}
	}
	var orders []*Order
	if err := dbCtx.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderSummary aggregates the header rollups across the filtered orders.
// Summation happens in Go to keep decimal arithmetic exact.
func GetOrderSummary(ctx context.Context, filters *OrderFilters) (*OrderSummary, error) {
	orders, err := GetOrders(ctx, filters)
	if err != nil {
		return nil, err
	}

	summary := OrderSummary{
		TotalAmount:   decimal.Zero,
		TotalCost:     decimal.Zero,
		TotalProfit:   decimal.Zero,
		TotalCartons:  decimal.Zero,
		ReturnCartons: decimal.Zero,
		ReturnAmount:  decimal.Zero,
	}
	for _, order := range orders {
		summary.OrderCount++
		summary.TotalAmount = summary.TotalAmount.Add(order.TotalAmount)
		summary.TotalCost = summary.TotalCost.Add(order.TotalCost)
		summary.TotalProfit = summary.TotalProfit.Add(order.TotalProfit)
		summary.TotalCartons = summary.TotalCartons.Add(order.TotalCartons)
		summary.ReturnCartons = summary.ReturnCartons.Add(order.ReturnCartons)
		summary.ReturnAmount = summary.ReturnAmount.Add(order.ReturnAmount)
	}
	return &summary, nil
}

func CreateOrderItem(ctx context.Context, orderId string, input *NewOrderItem) (*OrderItem, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Order](ctx, db, orderId); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	item, err := buildOrderItem(tx, orderId, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateOrderTotals(tx, orderId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return item, nil
}

func UpdateOrderItem(ctx context.Context, id string, input *UpdateOrderItemInput) (*OrderItem, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var item OrderItem
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	var product Product
	if err := tx.Where("id = ?", item.ProductId).First(&product).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.ReturnQuantity != nil {
		item.ReturnQuantity = *input.ReturnQuantity
	}
	if input.CostPrice != nil {
		item.CostPrice = *input.CostPrice
	}
	if input.SellPrice != nil {
		item.SellPrice = *input.SellPrice
	}
	item.calculateTotals(product.UnitPerCarton)

	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateOrderTotals(tx, item.OrderId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func DeleteOrderItem(ctx context.Context, id string) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var item OrderItem
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		tx.Rollback()
		return utils.ErrorRecordNotFound
	}
	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recalculateOrderTotals(tx, item.OrderId); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
