package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lcalzada-xor/blemap/internal/adapters/reporting"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
)

// ReportHandler serves downloadable survey reports.
type ReportHandler struct {
	Service  ports.TrackerService
	Exporter *reporting.PDFExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ports.TrackerService, exporter *reporting.PDFExporter) *ReportHandler {
	return &ReportHandler{Service: service, Exporter: exporter}
}

// HandleDeviceSurvey renders the current device list as a PDF download.
func (h *ReportHandler) HandleDeviceSurvey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	devices, stats := h.Service.ListDevices(r.Context())
	data, err := h.Exporter.ExportDeviceSurvey(devices, stats)
	if err != nil {
		http.Error(w, "Report generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("ble-survey-%s.pdf", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(data)
}
