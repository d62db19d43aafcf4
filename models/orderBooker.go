package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
)

// OrderBooker is a field sales agent. Daily entries, orders and monthly
// targets all hang off a booker and are removed with it (ON DELETE CASCADE).
type OrderBooker struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	NameUrdu  string    `gorm:"size:255;not null" json:"name_urdu"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Email     string    `gorm:"size:255;default:null" json:"email"`
	JoinDate  time.Time `gorm:"not null" json:"join_date"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrderBooker struct {
	Name     string    `json:"name" validate:"required"`
	NameUrdu string    `json:"name_urdu" validate:"required"`
	Phone    string    `json:"phone" validate:"required"`
	Email    string    `json:"email"`
	JoinDate time.Time `json:"join_date" validate:"required"`
	IsActive *bool     `json:"is_active"`
}

type UpdateOrderBookerInput struct {
	Name     *string    `json:"name"`
	NameUrdu *string    `json:"name_urdu"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email"`
	JoinDate *time.Time `json:"join_date"`
	IsActive *bool      `json:"is_active"`
}

func CreateOrderBooker(ctx context.Context, input *NewOrderBooker) (*OrderBooker, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
		return nil, errors.New("invalid phone number")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	booker := OrderBooker{
		ID:       uuid.NewString(),
		Name:     input.Name,
		NameUrdu: input.NameUrdu,
		Phone:    input.Phone,
		Email:    input.Email,
		JoinDate: utils.BeginningOfDay(input.JoinDate),
		IsActive: isActive,
	}
	if err := db.WithContext(ctx).Create(&booker).Error; err != nil {
		return nil, err
	}
	return &booker, nil
}

func UpdateOrderBooker(ctx context.Context, id string, input *UpdateOrderBookerInput) (*OrderBooker, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	var booker OrderBooker
	if err := db.WithContext(ctx).Where("id = ?", id).First(&booker).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.Name != nil {
		booker.Name = *input.Name
	}
	if input.NameUrdu != nil {
		booker.NameUrdu = *input.NameUrdu
	}
	if input.Phone != nil {
		if err := utils.ValidatePhoneNumber(*input.Phone, utils.CountryCode); err != nil {
			return nil, errors.New("invalid phone number")
		}
		booker.Phone = *input.Phone
	}
	if input.Email != nil {
		if *input.Email != "" && !utils.IsValidEmail(*input.Email) {
			return nil, errors.New("invalid email address")
		}
		booker.Email = *input.Email
	}
	if input.JoinDate != nil {
		booker.JoinDate = utils.BeginningOfDay(*input.JoinDate)
	}
	if input.IsActive != nil {
		booker.IsActive = input.IsActive
	}

	if err := db.WithContext(ctx).Save(&booker).Error; err != nil {
		return nil, err
	}
	return &booker, nil
}

// DeleteOrderBooker removes the booker; its daily entries, orders and monthly
// targets go with it via the schema's cascade rules.
func DeleteOrderBooker(ctx context.Context, id string) error {
	db := config.GetDB()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&OrderBooker{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func GetOrderBooker(ctx context.Context, id string) (*OrderBooker, error) {
	db := config.GetDB()

	var booker OrderBooker
	if err := db.WithContext(ctx).Where("id = ?", id).First(&booker).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &booker, nil
}

func GetOrderBookers(ctx context.Context, activeOnly bool) ([]*OrderBooker, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	var bookers []*OrderBooker
	if err := dbCtx.Find(&bookers).Error; err != nil {
		return nil, err
	}
	return bookers, nil
}
