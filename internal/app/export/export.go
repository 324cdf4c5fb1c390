package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"
	"meeting-transcriber/internal/app/model"
)

// ToExcel writes the run history to an xlsx workbook at outputFilePath.
func ToExcel(runs []model.Run, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Runs")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "File Name"
	headerRow.AddCell().Value = "Status"
	headerRow.AddCell().Value = "Started At"
	headerRow.AddCell().Value = "Finished At"
	headerRow.AddCell().Value = "Elapsed Seconds"
	headerRow.AddCell().Value = "Size Bytes"
	headerRow.AddCell().Value = "Transcript"
	headerRow.AddCell().Value = "Error Message"

	for _, r := range runs {
		row := sheet.AddRow()
		row.AddCell().Value = r.ID
		row.AddCell().Value = r.FileName
		row.AddCell().Value = string(r.Status)
		row.AddCell().Value = r.StartedAt.Format(time.RFC3339)
		finished := ""
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		row.AddCell().Value = finished
		row.AddCell().Value = fmt.Sprint(r.ElapsedSeconds)
		row.AddCell().Value = fmt.Sprint(r.SizeBytes)
		row.AddCell().Value = r.Transcript
		row.AddCell().Value = r.ErrorMessage
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
