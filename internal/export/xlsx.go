package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/yourorg/estate-api/listing"
)

const SheetName = "Listings"

var header = []any{"ID", "Title", "Type", "Price (ETB)", "Price", "Bedrooms", "Bathrooms", "Area (m²)", "Location", "Featured"}

// WriteXLSX writes props as a one-sheet workbook, in the given order.
func WriteXLSX(w io.Writer, props []listing.Property) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(2, 2, 32); err != nil {
		return err
	}
	if err := sw.SetColWidth(9, 9, 28); err != nil {
		return err
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range props {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			p.ID, p.Title, string(p.Type), p.Price, listing.FormatPrice(p.Price),
			p.Bedrooms, p.Bathrooms, p.Area, p.Location, p.Featured,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
