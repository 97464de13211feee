package export

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"vacationRentalWebsite/internal/models"
)

// SheetsExporter overwrites a range of a spreadsheet with the bookings table
type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetsExporter authenticates with a service-account credentials file
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID, writeRange string) (*SheetsExporter, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	return NewSheetsExporterWithOptions(ctx, spreadsheetID, writeRange, option.WithHTTPClient(config.Client(ctx)))
}

// NewSheetsExporterWithOptions builds the Sheets client from explicit options
func NewSheetsExporterWithOptions(ctx context.Context, spreadsheetID, writeRange string, opts ...option.ClientOption) (*SheetsExporter, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &SheetsExporter{service: srv, spreadsheetID: spreadsheetID, writeRange: writeRange}, nil
}

// SpreadsheetID is the target document
func (e *SheetsExporter) SpreadsheetID() string {
	return e.spreadsheetID
}

// ExportBookings writes a header row plus one row per booking and returns
// the range the API reports as updated.
func (e *SheetsExporter) ExportBookings(ctx context.Context, bookings []models.Booking) (string, error) {
	values := make([][]interface{}, 0, len(bookings)+1)

	header := make([]interface{}, len(BookingHeaders))
	for i, h := range BookingHeaders {
		header[i] = h
	}
	values = append(values, header)
	for _, b := range bookings {
		values = append(values, bookingRow(b))
	}

	resp, err := e.service.Spreadsheets.Values.Update(e.spreadsheetID, e.writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to write bookings sheet: %w", err)
	}
	return resp.UpdatedRange, nil
}
