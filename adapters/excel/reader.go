package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"prithvipulse/models"
)

// ReadMarketCrops loads a price sheet from an .xlsx or .csv file. The first row
// holding a "Crop" column is the header; rows above it are ignored, so sheets
// produced by MarketWriter read back as-is.
func ReadMarketCrops(path string) ([]models.MarketCrop, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return parseCropRows(rows)
}

func readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("price sheet not found: %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		return rows, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := MarketSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func parseCropRows(rows [][]string) ([]models.MarketCrop, error) {
	header := -1
	columns := map[string]int{}
	for i, row := range rows {
		for j, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name == "crop" {
				header = i
			}
			columns[name] = j
		}
		if header >= 0 {
			break
		}
		columns = map[string]int{}
	}
	if header < 0 {
		return nil, fmt.Errorf("price sheet has no Crop column")
	}

	get := func(row []string, names ...string) string {
		for _, n := range names {
			if j, ok := columns[n]; ok && j < len(row) {
				return strings.TrimSpace(row[j])
			}
		}
		return ""
	}

	var crops []models.MarketCrop
	for i, row := range rows[header+1:] {
		name := get(row, "crop")
		if name == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(get(row, "price"), ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price for %s", header+i+2, name)
		}

		change := get(row, "change (%)", "change")
		trend := models.Trend(strings.ToLower(get(row, "trend")))
		if trend == "" {
			trend = models.TrendFromChange(change)
		}
		id := get(row, "id")
		if id == "" {
			id = strconv.Itoa(len(crops) + 1)
		}

		crops = append(crops, models.MarketCrop{
			ID:         id,
			Name:       name,
			Price:      price,
			Unit:       get(row, "unit"),
			Change:     change,
			Trend:      trend,
			Forecast:   get(row, "forecast"),
			MarketNote: get(row, "note", "market note"),
		})
	}
	return crops, nil
}
