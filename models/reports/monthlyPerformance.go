package reports

import (
	"context"

	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/utils"
	"github.com/shopspring/decimal"
)

// MonthlyPerformanceRow is one booker's month at a glance: their target (zeros
// when no target row exists yet) next to what their daily entries actually
// summed to.
type MonthlyPerformanceRow struct {
	OrderBookerId         string          `json:"order_booker_id"`
	Name                  string          `json:"name"`
	NameUrdu              string          `json:"name_urdu"`
	TargetAmount          decimal.Decimal `json:"target_amount"`
	AchievedAmount        decimal.Decimal `json:"achieved_amount"`
	RemainingAmount       decimal.Decimal `json:"remaining_amount"`
	AchievementPercentage decimal.Decimal `json:"achievement_percentage"`
	DailyTargetAmount     decimal.Decimal `json:"daily_target_amount"`
	EntryCount            int64           `json:"entry_count"`
	TotalSales            decimal.Decimal `json:"total_sales"`
	TotalReturns          decimal.Decimal `json:"total_returns"`
	NetSales              decimal.Decimal `json:"net_sales"`
}

// GetMonthlyPerformance reports every active booker for (year, month), whether
// or not they have a target or any entries. Reporting read, raw SQL.
func GetMonthlyPerformance(ctx context.Context, year int, month int) ([]*MonthlyPerformanceRow, error) {
	db := config.GetDB()

	start, end := utils.MonthRange(year, month)
	var rows []*MonthlyPerformanceRow
	err := db.WithContext(ctx).Raw(`
		SELECT ob.id AS order_booker_id,
			ob.name AS name,
			ob.name_urdu AS name_urdu,
			COALESCE(mt.target_amount, 0) AS target_amount,
			COALESCE(mt.achieved_amount, 0) AS achieved_amount,
			COALESCE(mt.remaining_amount, 0) AS remaining_amount,
			COALESCE(mt.achievement_percentage, 0) AS achievement_percentage,
			COALESCE(mt.daily_target_amount, 0) AS daily_target_amount,
			COALESCE(e.entry_count, 0) AS entry_count,
			COALESCE(e.total_sales, 0) AS total_sales,
			COALESCE(e.total_returns, 0) AS total_returns,
			COALESCE(e.net_sales, 0) AS net_sales
		FROM order_bookers ob
		LEFT JOIN monthly_targets mt
			ON mt.order_booker_id = ob.id AND mt.year = ? AND mt.month = ?
		LEFT JOIN (
			SELECT order_booker_id,
				COUNT(id) AS entry_count,
				SUM(total_amount) AS total_sales,
				SUM(total_return_amount) AS total_returns,
				SUM(net_amount) AS net_sales
			FROM daily_entries
			WHERE date >= ? AND date < ?
			GROUP BY order_booker_id
		) e ON e.order_booker_id = ob.id
		WHERE ob.is_active = 1
		ORDER BY ob.name ASC`, year, month, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
