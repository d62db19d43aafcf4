package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
)

// Company owns products; deleting a company cascades to them.
type Company struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"size:255;default:null" json:"address"`
	Email     string    `gorm:"size:255;default:null" json:"email"`
	Phone     string    `gorm:"size:32;default:null" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type UpdateCompanyInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	company := Company{
		ID:      uuid.NewString(),
		Name:    input.Name,
		Address: input.Address,
		Email:   input.Email,
		Phone:   input.Phone,
	}
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func UpdateCompany(ctx context.Context, id string, input *UpdateCompanyInput) (*Company, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	var company Company
	if err := db.WithContext(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.Address != nil {
		company.Address = *input.Address
	}
	if input.Email != nil {
		if *input.Email != "" && !utils.IsValidEmail(*input.Email) {
			return nil, errors.New("invalid email address")
		}
		company.Email = *input.Email
	}
	if input.Phone != nil {
		company.Phone = *input.Phone
	}

	if err := db.WithContext(ctx).Save(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func DeleteCompany(ctx context.Context, id string) error {
	db := config.GetDB()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&Company{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func GetCompany(ctx context.Context, id string) (*Company, error) {
	db := config.GetDB()

	var company Company
	if err := db.WithContext(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &company, nil
}

func GetCompanies(ctx context.Context, searchTerm *string) ([]*Company, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Order("name ASC")
	if searchTerm != nil && *searchTerm != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*searchTerm+"%")
	}
	var companies []*Company
	if err := dbCtx.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
