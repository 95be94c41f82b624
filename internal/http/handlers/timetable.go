package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phpdave11/gofpdf"

	"mybus/internal/domain/models"
	"mybus/internal/services"
)

// TimetableHandler renders a printable timetable sheet for one schedule.
type TimetableHandler struct {
	Schedules services.ScheduleService
	Fleet     services.FleetService
}

// GET /schedules/:id/timetable
func (h TimetableHandler) ScheduleTimetablePDF(c *gin.Context) {
	schedule, err := h.Schedules.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	// The bus reference may be dangling; fall back to the raw id.
	busLabel := schedule.BusID
	if bus, err := h.Fleet.GetBus(schedule.BusID); err == nil {
		busLabel = bus.BusNumber
	}

	pdfBytes, filename, err := buildTimetablePDF(schedule, busLabel)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to build timetable PDF")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func buildTimetablePDF(s models.Schedule, busLabel string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Timetable", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS TIMETABLE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Bus          : %s", safe(busLabel)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Days active  : %s", safe(strings.Join(s.DaysActive, ", "))))
	pdf.Ln(7)
	freq := "-"
	if s.FrequencyMin != nil {
		freq = fmt.Sprintf("every %d min", *s.FrequencyMin)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Frequency    : %s", freq))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 8, "Stop", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Arrival", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Departure", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for _, timing := range s.StopTimings {
		pdf.CellFormat(80, 8, safe(timing.StopName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, safe(timing.ArrivalTime), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, safe(timing.DepartureTime), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TIMETABLE_%s.pdf", s.ID)
	return buf.Bytes(), filename, nil
}

func safe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
