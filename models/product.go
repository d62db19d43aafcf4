package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
	"github.com/shopspring/decimal"
)

// Product carries the current price book. Line items reference a product but
// freeze their own prices at write time; UnitPerCarton is the divisor used to
// express raw quantities in cartons (a divisor of 0 yields 0 cartons, never an
// error).
type Product struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	CompanyId     string          `gorm:"size:36;index;not null" json:"company_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
	SellPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sell_price"`
	UnitPerCarton int             `gorm:"not null" json:"unit_per_carton"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	CompanyId     string          `json:"company_id" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	UnitPerCarton int             `json:"unit_per_carton" validate:"min=0"`
}

type UpdateProductInput struct {
	Name          *string          `json:"name"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	SellPrice     *decimal.Decimal `json:"sell_price"`
	UnitPerCarton *int             `json:"unit_per_carton" validate:"omitempty,min=0"`
}

type ProductFilters struct {
	CompanyId  *string `json:"company_id"`
	SearchTerm *string `json:"search_term"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Company](ctx, db, input.CompanyId); err != nil {
		return nil, err
	}

	product := Product{
		ID:            uuid.NewString(),
		CompanyId:     input.CompanyId,
		Name:          input.Name,
		CostPrice:     input.CostPrice,
		SellPrice:     input.SellPrice,
		UnitPerCarton: input.UnitPerCarton,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*Product, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	var product Product
	if err := db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.CostPrice != nil {
		product.CostPrice = *input.CostPrice
	}
	if input.SellPrice != nil {
		product.SellPrice = *input.SellPrice
	}
	if input.UnitPerCarton != nil {
		product.UnitPerCarton = *input.UnitPerCarton
	}

	if err := db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes the product and, via cascade, every line item that
// references it. Callers are expected to re-read affected headers; deleting a
// product from the catalog is an administrative operation, not a sales write.
func DeleteProduct(ctx context.Context, id string) error {
	db := config.GetDB()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func GetProduct(ctx context.Context, id string) (*Product, error) {
	db := config.GetDB()

	var product Product
	if err := db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &product, nil
}

func GetProducts(ctx context.Context, filters *ProductFilters) ([]*Product, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Order("name ASC")
	if filters != nil {
		if filters.CompanyId != nil {
			dbCtx = dbCtx.Where("company_id = ?", *filters.CompanyId)
		}
		if filters.SearchTerm != nil && *filters.SearchTerm != "" {
			dbCtx = dbCtx.Where("name LIKE ?", "%"+*filters.SearchTerm+"%")
		}
	}
	var products []*Product
	if err := dbCtx.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
