// Package export renders request lists to spreadsheet files for the
// finance team.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"procurepay/internal/model"
)

const sheetName = "Requests"

var headings = []string{
	"ID", "Title", "Department", "Vendor", "Category",
	"Amount", "Quantity", "Urgency", "Status", "PO Number",
	"Created By", "Created At",
}

// Excel writes the given requests as an xlsx workbook to w.
func Excel(w io.Writer, requests []model.Request) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range headings {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for i, r := range requests {
		facts := model.FactsOrUnknown(r.Status)
		values := []interface{}{
			r.ID, r.Title, r.Department, r.VendorName, r.Category,
			r.Amount.String(), r.Quantity, r.Urgency, facts.Label, r.PONumber(),
			r.CreatedByName, r.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
