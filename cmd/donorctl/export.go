package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

const donorSheet = "Donors"

var donorColumns = []struct {
	header string
	width  float64
	value  func(entities.Donor) interface{}
}{
	{"Name", 24, func(d entities.Donor) interface{} { return d.Name }},
	{"Blood Type", 12, func(d entities.Donor) interface{} { return string(d.BloodType) }},
	{"Hospital", 36, func(d entities.Donor) interface{} { return d.FacilityName }},
	{"City", 14, func(d entities.Donor) interface{} { return d.Region }},
	{"Phone", 16, func(d entities.Donor) interface{} { return d.Phone }},
	{"Latitude", 12, func(d entities.Donor) interface{} { return d.Location.Latitude }},
	{"Longitude", 12, func(d entities.Donor) interface{} { return d.Location.Longitude }},
	{"Registered", 20, func(d entities.Donor) interface{} { return d.RegisteredAt.UTC().Format("2006-01-02 15:04:05") }},
	{"ID", 38, func(d entities.Donor) interface{} { return d.ID }},
}

// exportDonors writes donors to a workbook at path, one row per donor
// under a frozen header row.
func exportDonors(path string, donors []entities.Donor) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(donorSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#8B0000"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range donorColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(donorSheet, cell, col.header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(donorSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(donorSheet, name, name, col.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, donor := range donors {
		for c, col := range donorColumns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(donorSheet, cell, col.value(donor)); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(donorSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
