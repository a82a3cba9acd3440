package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

// PDFExporter renders device survey reports to PDF.
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportDeviceSurvey generates a survey report from the current device list.
func (e *PDFExporter) ExportDeviceSurvey(devices []domain.Device, stats domain.TrackerStats) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, stats)
	e.addDeviceTable(pdf, devices)
	e.addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, stats domain.TrackerStats) {
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 12, "BLE Device Survey", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(80, 80, 80)
	summary := fmt.Sprintf("Devices: %d   Listeners: %d   Suspicious: %d   Generated: %s",
		stats.TotalDevices, stats.Listeners, stats.Suspicious,
		time.Now().Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 8, summary, "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (e *PDFExporter) addDeviceTable(pdf *gofpdf.Fpdf, devices []domain.Device) {
	headers := []string{"Address", "Name", "Type", "Vendor", "Signal", "Distance", "Status", "Seen"}
	widths := []float64{38, 48, 40, 28, 18, 20, 28, 36}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 235, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, d := range devices {
		// Suspicious rows get a light red tint for quick scanning.
		fill := false
		if d.Status == domain.StatusSuspicious {
			pdf.SetFillColor(252, 228, 228)
			fill = true
		}

		cells := []string{
			d.MAC,
			truncate(d.DisplayName, 30),
			truncate(d.DeviceType, 26),
			d.Vendor,
			fmt.Sprintf("%d dBm", d.SignalStrength),
			fmt.Sprintf("%.1f m", d.Distance),
			string(d.Status),
			fmt.Sprintf("%dx", d.Appearances),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Classification and distance figures are heuristic estimates.", "", 1, "L", false, 0, "")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
