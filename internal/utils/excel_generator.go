package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"skywatch/internal/models"
)

const (
	observationsSheet = "Observations"
	advisoriesSheet   = "Advisories"
)

// CreateHistoryWorkbook writes the merged history of a location into an .xlsx
// workbook: one sheet of observations, one of advisories.
func CreateHistoryWorkbook(path string, rows []models.HistoryExportRow, advices []*models.AdviceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(observationsSheet)
	if err != nil {
		return err
	}

	headers := []string{"Observed At (local)", "Timezone", "Source", "Temperature (°C)", "Conditions", "Active Alerts"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(observationsSheet, cell, header)
	}

	for rowIdx, row := range rows {
		rowNum := rowIdx + 2 // header occupies the first row

		f.SetCellValue(observationsSheet, fmt.Sprintf("A%d", rowNum), row.ObservedAt)
		f.SetCellValue(observationsSheet, fmt.Sprintf("B%d", rowNum), row.Timezone)
		f.SetCellValue(observationsSheet, fmt.Sprintf("C%d", rowNum), row.Source)
		if row.HasTemp {
			f.SetCellValue(observationsSheet, fmt.Sprintf("D%d", rowNum), row.TempC)
		} else {
			f.SetCellValue(observationsSheet, fmt.Sprintf("D%d", rowNum), "N/A")
		}
		f.SetCellValue(observationsSheet, fmt.Sprintf("E%d", rowNum), row.Conditions)
		f.SetCellValue(observationsSheet, fmt.Sprintf("F%d", rowNum), row.AlertCount)
	}

	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(observationsSheet, colName, colName, 22)
	}

	// Flag temperature extremes.
	hotRule := []excelize.ConditionalFormatOptions{
		{
			Type:     "cell",
			Criteria: ">",
			Value:    "35",
			Format:   conditionalStyle(f, "#FFCCCC"),
		},
	}
	if err := f.SetConditionalFormat(observationsSheet, "D2:D1000", hotRule); err != nil {
		return err
	}
	coldRule := []excelize.ConditionalFormatOptions{
		{
			Type:     "cell",
			Criteria: "<",
			Value:    "-10",
			Format:   conditionalStyle(f, "#CCE5FF"),
		},
	}
	if err := f.SetConditionalFormat(observationsSheet, "D2:D1000", coldRule); err != nil {
		return err
	}

	if err := writeAdvisoriesSheet(f, advices); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on observations.
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	return f.SaveAs(path)
}

func writeAdvisoriesSheet(f *excelize.File, advices []*models.AdviceRecord) error {
	if _, err := f.NewSheet(advisoriesSheet); err != nil {
		return err
	}

	headers := []string{"Issued At (UTC)", "Observation ID", "Update Type", "Advice"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(advisoriesSheet, cell, header)
	}

	for rowIdx, advice := range advices {
		rowNum := rowIdx + 2

		f.SetCellValue(advisoriesSheet, fmt.Sprintf("A%d", rowNum),
			advice.IssuedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(advisoriesSheet, fmt.Sprintf("B%d", rowNum), advice.WeatherRecordID)
		f.SetCellValue(advisoriesSheet, fmt.Sprintf("C%d", rowNum), advice.UpdateType)
		f.SetCellValue(advisoriesSheet, fmt.Sprintf("D%d", rowNum), advice.AdviceText)
	}

	f.SetColWidth(advisoriesSheet, "A", "C", 22)
	f.SetColWidth(advisoriesSheet, "D", "D", 80)

	f.SetCellValue(advisoriesSheet, "F1", "Report Generated")
	f.SetCellValue(advisoriesSheet, "G1", time.Now().UTC().Format("2006-01-02 15:04:05"))

	return nil
}

func conditionalStyle(f *excelize.File, color string) *int {
	style, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil
	}
	return &style
}
