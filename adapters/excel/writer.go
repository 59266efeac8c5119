package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"prithvipulse/models"
)

// MarketSheet is the sheet name used for market exports
const MarketSheet = "Market"

var marketHeader = []interface{}{"ID", "Crop", "Price", "Unit", "Change (%)", "Trend", "Forecast", "Note"}

// MarketWriter lays a market snapshot out as a single-sheet workbook
type MarketWriter struct {
	snapshot models.MarketTrendsResponse
}

func NewMarketWriter(snapshot models.MarketTrendsResponse) *MarketWriter {
	return &MarketWriter{snapshot: snapshot.Clone()}
}

// WriteTo writes the workbook to w
func (mw *MarketWriter) WriteTo(w io.Writer) (int64, error) {
	f, err := mw.build()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

// SaveAs writes the workbook to path
func (mw *MarketWriter) SaveAs(path string) error {
	f, err := mw.build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (mw *MarketWriter) build() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", MarketSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	s := mw.snapshot
	meta := [][]interface{}{
		{"Region", s.Region},
		{"Market status", string(s.MarketStatus)},
		{"Analyst note", s.AnalystNote},
		{"Last updated", s.LastUpdated},
	}
	row := 1
	for _, line := range meta {
		if err := setRow(f, row, line); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	row++
	headerRow := row
	if err := setRow(f, row, marketHeader); err != nil {
		f.Close()
		return nil, err
	}
	for _, c := range s.Crops {
		row++
		line := []interface{}{c.ID, c.Name, c.Price, c.Unit, c.Change, string(c.Trend), c.Forecast, c.MarketNote}
		if err := setRow(f, row, line); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(marketHeader), headerRow)
	if err := f.SetCellStyle(MarketSheet, first, last, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(MarketSheet, "B", "B", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	return f, nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(MarketSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
