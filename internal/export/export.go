// Package export renders complaint listings into downloadable tabular
// formats.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/complaint-desk/backend/internal/storage/models"
)

var header = []string{"ID", "Name", "Age", "Mobile", "Email", "Complaint", "Department", "Timestamp"}

const timestampLayout = "2006-01-02 15:04:05"

func recordRow(r models.ComplaintRecord) []string {
	timestamp := "N/A"
	if !r.Timestamp.IsZero() {
		timestamp = r.Timestamp.Format(timestampLayout)
	}

	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		strconv.Itoa(r.Age),
		r.MobileNumber,
		r.EmailID,
		r.Complaint,
		r.Department,
		timestamp,
	}
}

// CSV renders records as a comma-separated table with a header row.
func CSV(records []models.ComplaintRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		if err := w.Write(recordRow(r)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// XLSX renders records as an Excel workbook with a single Complaints sheet.
func XLSX(records []models.ComplaintRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Complaints"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	writeRow := func(rowIndex int, values []string) error {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("failed to write xlsx header: %w", err)
	}

	for i, r := range records {
		if err := writeRow(i+2, recordRow(r)); err != nil {
			return nil, fmt.Errorf("failed to write xlsx row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}
