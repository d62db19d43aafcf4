package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyEntry is one booker-day of field sales. TotalAmount, TotalReturnAmount
// and NetAmount are derived from the entry's items and recomputed inside every
// transaction that touches them; NetAmount also feeds the booker's monthly
// target, so every entry write ends with a target reconciliation for the
// entry's month.
type DailyEntry struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	OrderBookerId     string          `gorm:"size:36;index;not null" json:"order_booker_id"`
	Date              time.Time       `gorm:"not null" json:"date"`
	Notes             string          `gorm:"default:null" json:"notes"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	TotalReturnAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_return_amount"`
	NetAmount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"net_amount"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items []*DailyEntryItem `gorm:"foreignKey:DailyEntryId" json:"items,omitempty"`
}

// DailyEntryItem records per-product sold/returned counts. Prices resolve to
// the override when set, otherwise the product's current price book, at
// computation time; NetQuantity, TotalCost and TotalRevenue are derived.
type DailyEntryItem struct {
	ID                string           `gorm:"primaryKey;size:36" json:"id"`
	DailyEntryId      string           `gorm:"size:36;index;not null" json:"daily_entry_id"`
	ProductId         string           `gorm:"size:36;index;not null" json:"product_id"`
	QuantitySold      int              `gorm:"default:0" json:"quantity_sold"`
	QuantityReturned  int              `gorm:"default:0" json:"quantity_returned"`
	NetQuantity       int              `gorm:"default:0" json:"net_quantity"`
	CostPriceOverride *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cost_price_override"`
	SellPriceOverride *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sell_price_override"`
	TotalCost         decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total_cost"`
	TotalRevenue      decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total_revenue"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDailyEntry struct {
	OrderBookerId string               `json:"order_booker_id" validate:"required"`
	Date          time.Time            `json:"date" validate:"required"`
	Notes         string               `json:"notes"`
	Items         []*NewDailyEntryItem `json:"items"`
}

type NewDailyEntryItem struct {
	ProductId         string           `json:"product_id" validate:"required"`
	QuantitySold      int              `json:"quantity_sold" validate:"min=0"`
	QuantityReturned  int              `json:"quantity_returned" validate:"min=0"`
	CostPriceOverride *decimal.Decimal `json:"cost_price_override"`
	SellPriceOverride *decimal.Decimal `json:"sell_price_override"`
}

// UpdateDailyEntryInput replaces the whole item set when Items is non-nil; a
// nil Items leaves the existing items alone.
type UpdateDailyEntryInput struct {
	Date  *time.Time           `json:"date"`
	Notes *string              `json:"notes"`
	Items []*NewDailyEntryItem `json:"items"`
}

type UpdateDailyEntryItemInput struct {
	QuantitySold      *int             `json:"quantity_sold" validate:"omitempty,min=0"`
	QuantityReturned  *int             `json:"quantity_returned" validate:"omitempty,min=0"`
	CostPriceOverride *decimal.Decimal `json:"cost_price_override"`
	SellPriceOverride *decimal.Decimal `json:"sell_price_override"`
}

type DailyEntryFilters struct {
	OrderBookerId *string    `json:"order_booker_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

func (item *DailyEntryItem) calculateTotals(product *Product) {
	costPrice := utils.DereferencePtr(item.CostPriceOverride, product.CostPrice)
	sellPrice := utils.DereferencePtr(item.SellPriceOverride, product.SellPrice)

	item.NetQuantity = item.QuantitySold - item.QuantityReturned
	item.TotalCost = decimal.NewFromInt(int64(item.NetQuantity)).Mul(costPrice)
	item.TotalRevenue = decimal.NewFromInt(int64(item.QuantitySold)).Mul(sellPrice)
}

// recalculateDailyEntryTotals re-derives the header rollups from the entry's
// current items. Return amounts are not stored per item, so the sell price is
// re-resolved against the product map here. An entry with no items rolls up to
// zeros. Must run inside the transaction that changed the items.
func recalculateDailyEntryTotals(tx *gorm.DB, entryId string) error {
	var items []*DailyEntryItem
	if err := tx.Where("daily_entry_id = ?", entryId).Find(&items).Error; err != nil {
		return err
	}

	productIds := make([]string, 0, len(items))
	for _, item := range items {
		productIds = append(productIds, item.ProductId)
	}
	products := map[string]*Product{}
	if len(productIds) > 0 {
		var rows []*Product
		if err := tx.Where("id IN ?", productIds).Find(&rows).Error; err != nil {
			return err
		}
		for _, product := range rows {
			products[product.ID] = product
		}
	}

	totalAmount := decimal.Zero
	totalReturnAmount := decimal.Zero
	for _, item := range items {
		totalAmount = totalAmount.Add(item.TotalRevenue)

		sellPrice := decimal.Zero
		if item.SellPriceOverride != nil {
			sellPrice = *item.SellPriceOverride
		} else if product, ok := products[item.ProductId]; ok {
			sellPrice = product.SellPrice
		}
		totalReturnAmount = totalReturnAmount.Add(decimal.NewFromInt(int64(item.QuantityReturned)).Mul(sellPrice))
	}

	return tx.Model(&DailyEntry{}).Where("id = ?", entryId).Updates(map[string]interface{}{
		"total_amount":        totalAmount,
		"total_return_amount": totalReturnAmount,
		"net_amount":          totalAmount.Sub(totalReturnAmount),
	}).Error
}

func buildDailyEntryItem(tx *gorm.DB, entryId string, input *NewDailyEntryItem) (*DailyEntryItem, error) {
	var product Product
	if err := tx.Where("id = ?", input.ProductId).First(&product).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	item := DailyEntryItem{
		ID:                uuid.NewString(),
		DailyEntryId:      entryId,
		ProductId:         input.ProductId,
		QuantitySold:      input.QuantitySold,
		QuantityReturned:  input.QuantityReturned,
		CostPriceOverride: input.CostPriceOverride,
		SellPriceOverride: input.SellPriceOverride,
	}
	item.calculateTotals(&product)
	return &item, nil
}

func CreateDailyEntry(ctx context.Context, input *NewDailyEntry) (*DailyEntry, error) {
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

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	entry := DailyEntry{
		ID:            uuid.NewString(),
		OrderBookerId: input.OrderBookerId,
		Date:          utils.BeginningOfDay(input.Date),
		Notes:         input.Notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, itemInput := range input.Items {
		item, err := buildDailyEntryItem(tx, entry.ID, itemInput)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Create(item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := recalculateDailyEntryTotals(tx, entry.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, entry.Date.Year(), int(entry.Date.Month())); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetDailyEntryWithItems(ctx, entry.ID)
}

func UpdateDailyEntry(ctx context.Context, id string, input *UpdateDailyEntryInput) (*DailyEntry, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	for _, itemInput := range input.Items {
		if err := utils.ValidateStruct(itemInput); err != nil {
			return nil, err
		}
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

	var entry DailyEntry
	if err := tx.Where("id = ?", id).First(&entry).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	oldYear, oldMonth := entry.Date.Year(), int(entry.Date.Month())

	if input.Date != nil {
		entry.Date = utils.BeginningOfDay(*input.Date)
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	if err := tx.Save(&entry).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if input.Items != nil {
		if err := tx.Where("daily_entry_id = ?", entry.ID).Delete(&DailyEntryItem{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for _, itemInput := range input.Items {
			item, err := buildDailyEntryItem(tx, entry.ID, itemInput)
			if err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := tx.Create(item).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := recalculateDailyEntryTotals(tx, entry.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	// The entry may have moved to a different month; both months' achieved
	// amounts need re-deriving in that case.
	if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, oldYear, oldMonth); err != nil {
		tx.Rollback()
		return nil, err
	}
	newYear, newMonth := entry.Date.Year(), int(entry.Date.Month())
	if newYear != oldYear || newMonth != oldMonth {
		if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, newYear, newMonth); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetDailyEntryWithItems(ctx, entry.ID)
}

func DeleteDailyEntry(ctx context.Context, id string) error {
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

	var entry DailyEntry
	if err := tx.Where("id = ?", id).First(&entry).Error; err != nil {
		tx.Rollback()
		return utils.ErrorRecordNotFound
	}
	if err := tx.Delete(&entry).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, entry.Date.Year(), int(entry.Date.Month())); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func GetDailyEntry(ctx context.Context, id string) (*DailyEntry, error) {
	db := config.GetDB()

	var entry DailyEntry
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &entry, nil
}

func GetDailyEntryWithItems(ctx context.Context, id string) (*DailyEntry, error) {
	db := config.GetDB()

	var entry DailyEntry
	if err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &entry, nil
}

func GetDailyEntries(ctx context.Context, filters *DailyEntryFilters) ([]*DailyEntry, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Order("date DESC, created_at DESC")
	if filters != nil {
		if filters.OrderBookerId != nil {
			dbCtx = dbCtx.Where("order_booker_id = ?", *filters.OrderBookerId)
		}
		if filters.StartDate != nil {
			dbCtx = dbCtx.Where("date >= ?", utils.BeginningOfDay(*filters.StartDate))
		}
		if filters.EndDate != nil {
			dbCtx = dbCtx.Where("date <= ?", utils.BeginningOfDay(*filters.EndDate))
		}
	}
	var entries []*DailyEntry
	if err := dbCtx.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func CreateDailyEntryItem(ctx context.Context, entryId string, input *NewDailyEntryItem) (*DailyEntryItem, error) {
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

	var entry DailyEntry
	if err := tx.Where("id = ?", entryId).First(&entry).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	item, err := buildDailyEntryItem(tx, entryId, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateDailyEntryTotals(tx, entryId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, entry.Date.Year(), int(entry.Date.Month())); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return item, nil
}

func UpdateDailyEntryItem(ctx context.Context, id string, input *UpdateDailyEntryItemInput) (*DailyEntryItem, error) {
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

	var item DailyEntryItem
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	var entry DailyEntry
	if err := tx.Where("id = ?", item.DailyEntryId).First(&entry).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	var product Product
	if err := tx.Where("id = ?", item.ProductId).First(&product).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if input.QuantitySold != nil {
		item.QuantitySold = *input.QuantitySold
	}
	if input.QuantityReturned != nil {
		item.QuantityReturned = *input.QuantityReturned
	}
	if input.CostPriceOverride != nil {
		item.CostPriceOverride = input.CostPriceOverride
	}
	if input.SellPriceOverride != nil {
		item.SellPriceOverride = input.SellPriceOverride
	}
	item.calculateTotals(&product)

	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalculateDailyEntryTotals(tx, item.DailyEntryId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, entry.Date.Year(), int(entry.Date.Month())); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func DeleteDailyEntryItem(ctx context.Context, id string) error {
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

	var item DailyEntryItem
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		tx.Rollback()
		return utils.ErrorRecordNotFound
	}
	var entry DailyEntry
	if err := tx.Where("id = ?", item.DailyEntryId).First(&entry).Error; err != nil {
		tx.Rollback()
		return utils.ErrorRecordNotFound
	}
	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recalculateDailyEntryTotals(tx, item.DailyEntryId); err != nil {
		tx.Rollback()
		return err
	}
	if err := reconcileMonthlyTarget(tx, entry.OrderBookerId, entry.Date.Year(), int(entry.Date.Month())); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// MonthlyAnalyticsRow is one booker's aggregate for a month. Computed in SQL as
// a reporting read; the stored rollups it sums were produced by the exact
// decimal path.
type MonthlyAnalyticsRow struct {
	OrderBookerId     string          `json:"order_booker_id"`
	OrderBookerName   string          `json:"order_booker_name"`
	EntryCount        int64           `json:"entry_count"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalReturnAmount decimal.Decimal `json:"total_return_amount"`
	NetAmount         decimal.Decimal `json:"net_amount"`
}

func GetMonthlyAnalytics(ctx context.Context, year int, month int) ([]*MonthlyAnalyticsRow, error) {
	db := config.GetDB()

	start, end := utils.MonthRange(year, month)
	var rows []*MonthlyAnalyticsRow
	err := db.WithContext(ctx).Raw(`
		SELECT de.order_booker_id AS order_booker_id,
			ob.name AS order_booker_name,
			COUNT(de.id) AS entry_count,
			COALESCE(SUM(de.total_amount), 0) AS total_amount,
			COALESCE(SUM(de.total_return_amount), 0) AS total_return_amount,
			COALESCE(SUM(de.net_amount), 0) AS net_amount
		FROM daily_entries de
		JOIN order_bookers ob ON ob.id = de.order_booker_id
		WHERE de.date >= ? AND de.date < ?
		GROUP BY de.order_booker_id, ob.name
		ORDER BY net_amount DESC`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
