package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"vacationRentalWebsite/internal/models"
)

const bookingsSheet = "Bookings"

// WriteBookingsXLSX renders bookings as a single-sheet workbook to w
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	header := make([]interface{}, len(BookingHeaders))
	for i, h := range BookingHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(BookingHeaders), 1)
	if err := f.SetCellStyle(bookingsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := bookingRow(b)
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing booking %s: %w", b.ID, err)
		}
	}

	if err := f.SetColWidth(bookingsSheet, "A", "B", 26); err != nil {
		return fmt.Errorf("error sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
