package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"goodfork/internal/domain"
	"goodfork/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// SalesReporter writes daily sales statistics into an Excel workbook.
type SalesReporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewSalesReporter(repo domain.Repository, path string, logger *zerolog.Logger) *SalesReporter {
	return &SalesReporter{repo: repo, path: path, logger: logger}
}

// WriteDay writes a one-day workbook: the day's total plus the per-order
// breakdown is out of scope here, the ledger already folded orders into
// sales_statistics.
func (r *SalesReporter) WriteDay(ctx context.Context, day time.Time) (string, error) {
	stat, err := r.repo.GetDailySales(ctx, day)
	if err != nil {
		return "", fmt.Errorf("loading sales for %s: %w", models.DayKey(day), err)
	}

	if err := os.MkdirAll(r.path, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Sales"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	writeHeader(f, sheetName)
	writeRow(f, sheetName, 2, stat)

	_ = f.SetColWidth(sheetName, "A", "B", 16)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("sales_%s.xlsx", models.DayKey(stat.Day))
	filePath := filepath.Join(r.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("saving file: %w", err)
	}

	r.logger.Info().Str("file_path", filePath).Msg("Sales workbook created")
	return filePath, nil
}

// WriteRange writes one workbook covering [from, to] with a row per day
// that has recorded benefits.
func (r *SalesReporter) WriteRange(ctx context.Context, from, to time.Time) (string, error) {
	stats, err := r.repo.GetSalesRange(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("loading sales range: %w", err)
	}

	if err := os.MkdirAll(r.path, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Sales"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	writeHeader(f, sheetName)

	var total float64
	row := 2
	for _, stat := range stats {
		writeRow(f, sheetName, row, stat)
		total += stat.Benefits
		row++
	}

	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Total")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), total)

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), boldStyle)

	_ = f.SetColWidth(sheetName, "A", "B", 16)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("sales_%s_to_%s.xlsx", models.DayKey(from), models.DayKey(to))
	filePath := filepath.Join(r.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("saving file: %w", err)
	}

	r.logger.Info().Str("file_path", filePath).Int("days", len(stats)).Msg("Sales range workbook created")
	return filePath, nil
}

func writeHeader(f *excelize.File, sheetName string) {
	_ = f.SetCellValue(sheetName, "A1", "Day")
	_ = f.SetCellValue(sheetName, "B1", "Benefits")

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "B1", style)
}

func writeRow(f *excelize.File, sheetName string, row int, stat *models.SalesStatistic) {
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), models.DayKey(stat.Day))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), stat.Benefits)
}
