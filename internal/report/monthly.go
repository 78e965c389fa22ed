package report

import (
	"bytes"
	"fmt"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Expenses"

// BuildMonthly renders the expenses of one YYYY-MM month into an xlsx
// workbook: one row per expense plus a trailing total of the signed
// amounts. Records outside the month are skipped; the input order
// (most recent first) is preserved.
func BuildMonthly(month string, expenses []entity.Expense) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"Date", "Employee", "Type", "Amount", "Payment Method", "Status", "Recorded By"}
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, hdr); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	total := decimal.Zero
	for _, e := range expenses {
		if e.Month != month {
			continue
		}

		recordedBy := string(e.CreatedBy)
		if e.CreatedByName != "" {
			recordedBy = fmt.Sprintf("%s (%s)", e.CreatedByName, e.CreatedBy)
		}

		amount, _ := e.Amount.Float64()
		values := []interface{}{
			e.Date,
			e.EmployeeName,
			string(e.Type),
			amount,
			string(e.PaymentMethod),
			string(e.Status),
			recordedBy,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}

		total = total.Add(e.Amount)
		row++
	}

	totalLabel, _ := excelize.CoordinatesToCellName(3, row)
	totalCell, _ := excelize.CoordinatesToCellName(4, row)
	if err := f.SetCellValue(sheetName, totalLabel, "Total"); err != nil {
		return nil, fmt.Errorf("failed to write total label: %w", err)
	}
	totalValue, _ := total.Float64()
	if err := f.SetCellValue(sheetName, totalCell, totalValue); err != nil {
		return nil, fmt.Errorf("failed to write total: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}
