package api

import (
	"fmt"
	"net/http"
	"time"

	"stayfinder/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Reservations"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateLayout  = "2006-01-02"
	exportStampLayout = "2006-01-02 15:04"
)

var exportHeaders = []string{
	"Reservation", "Property", "Location", "Guest", "Check-in", "Check-out",
	"Nights", "Guests", "Total", "Status", "Booked at",
}

func (s *HTTPServer) handleExportHostBookings(w http.ResponseWriter, r *http.Request) {
	host, _ := IdentityFromContext(r.Context())
	reservations, err := s.bookings.ListHostReservations(r.Context(), *host)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := buildReservationsWorkbook(reservations)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("reservations_%s.xlsx", time.Now().UTC().Format(exportDateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		s.log.Error().Err(err).Msg("Failed to stream reservations export")
	}
}

// buildReservationsWorkbook lays out one row per reservation under a styled header row.
func buildReservationsWorkbook(reservations []*models.ReservationDetail) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating style: %w", err)
	}

	for col, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, title)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, d := range reservations {
		row := []interface{}{
			d.ID,
			d.ListingTitle,
			d.ListingLocation,
			d.GuestName,
			d.CheckIn.String(),
			d.CheckOut.String(),
			d.Nights,
			d.Guests,
			d.TotalPrice,
			d.Status,
			d.CreatedAt.UTC().Format(exportStampLayout),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "D", 25)
	_ = f.SetColWidth(exportSheet, "E", "K", 14)
	return f, nil
}
