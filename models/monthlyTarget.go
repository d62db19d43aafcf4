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

// MonthlyTarget tracks one booker's quota for a month. AchievedAmount is the
// sum of the booker's daily entry net amounts for that month; RemainingAmount,
// AchievementPercentage and DailyTargetAmount are derived from it. Rows come
// into existence two ways: explicitly via CreateMonthlyTarget, or lazily with a
// zero target the first time an entry write reconciles that month.
type MonthlyTarget struct {
	ID                    string          `gorm:"primaryKey;size:36" json:"id"`
	OrderBookerId         string          `gorm:"size:36;not null;uniqueIndex:idx_target_booker_month" json:"order_booker_id"`
	Year                  int             `gorm:"not null;uniqueIndex:idx_target_booker_month" json:"year"`
	Month                 int             `gorm:"not null;uniqueIndex:idx_target_booker_month" json:"month"`
	TargetAmount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"target_amount"`
	AchievedAmount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"achieved_amount"`
	RemainingAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"remaining_amount"`
	AchievementPercentage decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"achievement_percentage"`
	DaysInMonth           int             `gorm:"not null" json:"days_in_month"`
	WorkingDaysInMonth    int             `gorm:"not null" json:"working_days_in_month"`
	DailyTargetAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"daily_target_amount"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMonthlyTarget struct {
	OrderBookerId string          `json:"order_booker_id" validate:"required"`
	Year          int             `json:"year" validate:"min=2000,max=2200"`
	Month         int             `json:"month" validate:"min=1,max=12"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
}

type UpdateMonthlyTargetInput struct {
	TargetAmount       *decimal.Decimal `json:"target_amount"`
	WorkingDaysInMonth *int             `json:"working_days_in_month" validate:"omitempty,min=1"`
}

// recalcDerived overwrites the three derived fields from the current target,
// achieved and working-days values. A zero target yields 0% rather than a
// division error, and zero working days yields a zero daily target.
func (t *MonthlyTarget) recalcDerived() {
	t.RemainingAmount = t.TargetAmount.Sub(t.AchievedAmount)
	if t.TargetAmount.IsZero() {
		t.AchievementPercentage = decimal.Zero
	} else {
		t.AchievementPercentage = t.AchievedAmount.
			Div(t.TargetAmount).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	if t.WorkingDaysInMonth <= 0 {
		t.DailyTargetAmount = decimal.Zero
	} else {
		t.DailyTargetAmount = t.TargetAmount.
			Div(decimal.NewFromInt(int64(t.WorkingDaysInMonth))).
			Round(1)
	}
}

// achievedForMonth sums the booker's daily entry net amounts over the month,
// in Go, to keep the decimal arithmetic exact. No entries means zero.
func achievedForMonth(tx *gorm.DB, orderBookerId string, year int, month int) (decimal.Decimal, error) {
	start, end := utils.MonthRange(year, month)
	var entries []*DailyEntry
	if err := tx.Where("order_booker_id = ? AND date >= ? AND date < ?", orderBookerId, start, end).
		Find(&entries).Error; err != nil {
		return decimal.Zero, err
	}
	achieved := decimal.Zero
	for _, entry := range entries {
		achieved = achieved.Add(entry.NetAmount)
	}
	return achieved, nil
}

// ensureMonthlyTarget returns the booker's target row for (year, month),
// creating a zero-target row if none exists yet. The lazily created row counts
// every calendar day as a working day; an explicit create or update can refine
// that later.
func ensureMonthlyTarget(tx *gorm.DB, orderBookerId string, year int, month int) (*MonthlyTarget, error) {
	days := utils.DaysInMonth(year, month)
	// The key fields must be set on the struct itself: a created row only gets
	// the values carried by the destination and Attrs, not by string conditions.
	target := MonthlyTarget{
		OrderBookerId: orderBookerId,
		Year:          year,
		Month:         month,
	}
	err := tx.Where(&MonthlyTarget{OrderBookerId: orderBookerId, Year: year, Month: month}).
		Attrs(MonthlyTarget{
			ID:                 uuid.NewString(),
			DaysInMonth:        days,
			WorkingDaysInMonth: days,
		}).
		FirstOrCreate(&target).Error
	if err != nil {
		return nil, err
	}
	return &target, nil
}

// reconcileMonthlyTarget re-derives the achieved amount and everything hanging
// off it for the booker's (year, month) target, creating the row if needed.
// Called by every daily entry write, inside the writing transaction.
func reconcileMonthlyTarget(tx *gorm.DB, orderBookerId string, year int, month int) error {
	target, err := ensureMonthlyTarget(tx, orderBookerId, year, month)
	if err != nil {
		return err
	}
	achieved, err := achievedForMonth(tx, orderBookerId, year, month)
	if err != nil {
		return err
	}
	target.AchievedAmount = achieved
	target.recalcDerived()
	return tx.Save(target).Error
}

func CreateMonthlyTarget(ctx context.Context, input *NewMonthlyTarget) (*MonthlyTarget, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[OrderBooker](ctx, db, input.OrderBookerId); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[MonthlyTarget](ctx, db,
		"order_booker_id = ? AND year = ? AND month = ?", input.OrderBookerId, input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("monthly target already exists for this booker and month")
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

	days := utils.DaysInMonth(input.Year, input.Month)
	target := MonthlyTarget{
		ID:                 uuid.NewString(),
		OrderBookerId:      input.OrderBookerId,
		Year:               input.Year,
		Month:              input.Month,
		TargetAmount:       input.TargetAmount,
		DaysInMonth:        days,
		WorkingDaysInMonth: days * 5 / 7,
	}
	achieved, err := achievedForMonth(tx, input.OrderBookerId, input.Year, input.Month)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	target.AchievedAmount = achieved
	target.recalcDerived()

	if err := tx.Create(&target).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &target, nil
}

func UpdateMonthlyTarget(ctx context.Context, id string, input *UpdateMonthlyTargetInput) (*MonthlyTarget, error) {
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

	var target MonthlyTarget
	if err := tx.Where("id = ?", id).First(&target).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if input.TargetAmount != nil {
		target.TargetAmount = *input.TargetAmount
	}
	if input.WorkingDaysInMonth != nil {
		target.WorkingDaysInMonth = *input.WorkingDaysInMonth
	}

	achieved, err := achievedForMonth(tx, target.OrderBookerId, target.Year, target.Month)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	target.AchievedAmount = achieved
	target.recalcDerived()

	if err := tx.Save(&target).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &target, nil
}

func DeleteMonthlyTarget(ctx context.Context, id string) error {
	db := config.GetDB()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&MonthlyTarget{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// GetMonthlyTarget is the lazy read path: it resolves the booker's (year,
// month) target, creating and reconciling a zero-target row if the month was
// never seen before.
func GetMonthlyTarget(ctx context.Context, orderBookerId string, year int, month int) (*MonthlyTarget, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[OrderBooker](ctx, db, orderBookerId); err != nil {
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

	if err := reconcileMonthlyTarget(tx, orderBookerId, year, month); err != nil {
		tx.Rollback()
		return nil, err
	}
	var target MonthlyTarget
	if err := tx.Where("order_booker_id = ? AND year = ? AND month = ?", orderBookerId, year, month).
		First(&target).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &target, nil
}

func GetMonthlyTargetById(ctx context.Context, id string) (*MonthlyTarget, error) {
	db := config.GetDB()

	var target MonthlyTarget
	if err := db.WithContext(ctx).Where("id = ?", id).First(&target).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &target, nil
}

func GetTargetsByMonth(ctx context.Context, year int, month int) ([]*MonthlyTarget, error) {
	db := config.GetDB()

	var targets []*MonthlyTarget
	if err := db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		Order("order_booker_id ASC").
		Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

func GetTargetsByOrderBooker(ctx context.Context, orderBookerId string) ([]*MonthlyTarget, error) {
	db := config.GetDB()

	var targets []*MonthlyTarget
	if err := db.WithContext(ctx).
		Where("order_booker_id = ?", orderBookerId).
		Order("year DESC, month DESC").
		Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

// BatchUpsertMonthlyTargets sets target amounts for many bookers in one
// transaction, creating rows where they don't exist and reconciling each one.
func BatchUpsertMonthlyTargets(ctx context.Context, inputs []*NewMonthlyTarget) ([]*MonthlyTarget, error) {
	db := config.GetDB()

	for _, input := range inputs {
		if err := utils.ValidateStruct(input); err != nil {
			return nil, err
		}
		if err := utils.ValidateResourceId[OrderBooker](ctx, db, input.OrderBookerId); err != nil {
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

	targets := make([]*MonthlyTarget, 0, len(inputs))
	for _, input := range inputs {
		var target *MonthlyTarget
		isNew := false
		var existing MonthlyTarget
		err := tx.Where("order_booker_id = ? AND year = ? AND month = ?",
			input.OrderBookerId, input.Year, input.Month).First(&existing).Error
		switch {
		case err == nil:
			target = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			days := utils.DaysInMonth(input.Year, input.Month)
			target = &MonthlyTarget{
				ID:                 uuid.NewString(),
				OrderBookerId:      input.OrderBookerId,
				Year:               input.Year,
				Month:              input.Month,
				DaysInMonth:        days,
				WorkingDaysInMonth: days * 5 / 7,
			}
			isNew = true
		default:
			tx.Rollback()
			return nil, err
		}
		target.TargetAmount = input.TargetAmount
		achieved, err := achievedForMonth(tx, input.OrderBookerId, input.Year, input.Month)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		target.AchievedAmount = achieved
		target.recalcDerived()
		var writeErr error
		if isNew {
			writeErr = tx.Create(target).Error
		} else {
			writeErr = tx.Save(target).Error
		}
		if writeErr != nil {
			tx.Rollback()
			return nil, writeErr
		}
		targets = append(targets, target)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return targets, nil
}

// CopyTargetsFromPreviousMonth seeds (year, month) with the previous month's
// target amounts for every booker that has a previous target but none yet for
// the new month. Returns the created targets.
func CopyTargetsFromPreviousMonth(ctx context.Context, year int, month int) ([]*MonthlyTarget, error) {
	db := config.GetDB()

	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevYear, prevMonth = year-1, 12
	}

	previous, err := GetTargetsByMonth(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}

	inputs := make([]*NewMonthlyTarget, 0, len(previous))
	for _, prev := range previous {
		count, err := utils.ResourceCountWhere[MonthlyTarget](ctx, db,
			"order_booker_id = ? AND year = ? AND month = ?", prev.OrderBookerId, year, month)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		inputs = append(inputs, &NewMonthlyTarget{
			OrderBookerId: prev.OrderBookerId,
			Year:          year,
			Month:         month,
			TargetAmount:  prev.TargetAmount,
		})
	}

	targets := make([]*MonthlyTarget, 0, len(inputs))
	for _, input := range inputs {
		target, err := CreateMonthlyTarget(ctx, input)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}
