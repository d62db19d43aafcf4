package utils

import (
	"context"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// ValidateStruct runs the `validate:"..."` tags on an input struct.
func ValidateStruct(input interface{}) error {
	return validate.Struct(input)
}

// ValidateResourceId checks that a row of T with the given id exists, returning
// ErrorRecordNotFound when it does not.
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, id string) error {
	count, err := ResourceCountWhere[T](ctx, db, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// ResourceCountWhere counts rows of T matching the condition.
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T

	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
