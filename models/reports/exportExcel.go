package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportMonthlyPerformanceExcel writes the monthly performance report for
// (year, month) to an xlsx file at filename.
func ExportMonthlyPerformanceExcel(ctx context.Context, year int, month int, filename string) error {
	data, err := GetMonthlyPerformance(ctx, year, month)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue(sheetName, "A1", "OrderBooker")
	f.SetCellValue(sheetName, "B1", "OrderBookerUrdu")
	f.SetCellValue(sheetName, "C1", "Target")
	f.SetCellValue(sheetName, "D1", "Achieved")
	f.SetCellValue(sheetName, "E1", "Remaining")
	f.SetCellValue(sheetName, "F1", "AchievementPct")
	f.SetCellValue(sheetName, "G1", "DailyTarget")
	f.SetCellValue(sheetName, "H1", "EntryCount")
	f.SetCellValue(sheetName, "I1", "TotalSales")
	f.SetCellValue(sheetName, "J1", "TotalReturns")
	f.SetCellValue(sheetName, "K1", "NetSales")

	// Add data
	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, d.Name)
		f.SetCellValue(sheetName, "B"+row, d.NameUrdu)
		f.SetCellValue(sheetName, "C"+row, d.TargetAmount.InexactFloat64())
		f.SetCellValue(sheetName, "D"+row, d.AchievedAmount.InexactFloat64())
		f.SetCellValue(sheetName, "E"+row, d.RemainingAmount.InexactFloat64())
		f.SetCellValue(sheetName, "F"+row, d.AchievementPercentage.InexactFloat64())
		f.SetCellValue(sheetName, "G"+row, d.DailyTargetAmount.InexactFloat64())
		f.SetCellValue(sheetName, "H"+row, d.EntryCount)
		f.SetCellValue(sheetName, "I"+row, d.TotalSales.InexactFloat64())
		f.SetCellValue(sheetName, "J"+row, d.TotalReturns.InexactFloat64())
		f.SetCellValue(sheetName, "K"+row, d.NetSales.InexactFloat64())
	}

	if err := f.SaveAs(filename); err != nil {
		return err
	}
	return nil
}
