package export

import (
	"fmt"
	"io"
	"time"

	"salesdash/server/internal/analytics"
	"salesdash/server/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetAreas      = "Areas"
	SheetCategories = "Categories"
	SheetProperties = "Properties"
)

// Report is everything one workbook holds.
type Report struct {
	GeneratedAt time.Time
	Stats       models.GlobalStats
	Areas       []models.AreaStatistic
	Properties  []models.Property
}

var (
	areaHeaders = []string{
		"市区町村", "物件数", "賃貸", "売買", "平均価格", "中央値", "最低価格", "最高価格",
		"今週の新着", "今月の新着", "活性度",
	}
	categoryHeaders = []string{"種別", "ジャンル", "件数"}
	propertyHeaders = []string{
		"ID", "タイトル", "カテゴリ", "エリア", "価格", "価格(数値)", "会社名",
		"初回掲載日", "最終確認日", "URL",
	}
)

// Write renders r as an xlsx workbook to w.
func Write(w io.Writer, r Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveAs renders r to the file at path.
func SaveAs(path string, r Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func build(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetAreas); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetCategories, SheetProperties} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, Report) error{writeAreas, writeCategories, writeProperties}
	for _, step := range steps {
		if err := step(f, r); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeAreas(f *excelize.File, r Report) error {
	if err := writeRow(f, SheetAreas, 1, toAny(areaHeaders)...); err != nil {
		return err
	}
	for i, a := range r.Areas {
		err := writeRow(f, SheetAreas, i+2,
			a.City, a.TotalProperties, a.ByType.Rental, a.ByType.Sale,
			a.AvgPrice, a.MedianPrice, a.MinPrice, a.MaxPrice,
			a.NewThisWeek, a.NewThisMonth, a.ActivityScore,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCategories(f *excelize.File, r Report) error {
	if err := writeRow(f, SheetCategories, 1, toAny(categoryHeaders)...); err != nil {
		return err
	}
	row := 2
	for _, c := range r.Stats.ByCategory {
		if err := writeRow(f, SheetCategories, row, c.CategoryName, c.GenreName, c.Count); err != nil {
			return err
		}
		row++
	}

	// totals below a blank line
	row++
	totals := [][]any{
		{"合計", "", r.Stats.Total},
		{"賃貸", "", r.Stats.ByType.Rental},
		{"売買", "", r.Stats.ByType.Sale},
		{"本日の新着", "", r.Stats.NewToday},
		{"本日の成約", "", r.Stats.SoldToday},
	}
	if !r.GeneratedAt.IsZero() {
		totals = append(totals, []any{"作成日時", "", r.GeneratedAt.In(models.Tokyo).Format("2006-01-02 15:04")})
	}
	for _, values := range totals {
		if err := writeRow(f, SheetCategories, row, values...); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeProperties(f *excelize.File, r Report) error {
	if err := writeRow(f, SheetProperties, 1, toAny(propertyHeaders)...); err != nil {
		return err
	}
	for i := range r.Properties {
		p := &r.Properties[i]
		err := writeRow(f, SheetProperties, i+2,
			p.ID, p.Title, p.GenreName, analytics.PropertyArea(p),
			p.Price, analytics.PriceValue(p), p.CompanyName,
			formatDate(p.FirstSeenDate), formatDate(p.LastSeenDate), p.URL,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(models.Tokyo).Format("2006-01-02")
}
