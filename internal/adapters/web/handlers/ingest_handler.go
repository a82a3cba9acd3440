package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
)

// IngestHandler accepts sighting reports from edge listeners.
type IngestHandler struct {
	Service ports.TrackerService
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(service ports.TrackerService) *IngestHandler {
	return &IngestHandler{Service: service}
}

type batchRequest struct {
	// Pointer distinguishes a missing field from an empty batch.
	Devices     *[]domain.Sighting `json:"devices"`
	ListenerMAC string             `json:"listenerMac"`
}

type singleRequest struct {
	Device      *domain.Sighting `json:"device"`
	ListenerMAC string           `json:"listenerMac"`
}

// HandleIngestBatch processes a batch of sightings from one listener.
func (h *IngestHandler) HandleIngestBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.ListenerMAC == "" || req.Devices == nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	stats, err := h.Service.IngestBatch(r.Context(), *req.Devices, req.ListenerMAC)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// HandleIngestSingle processes a single sighting update.
func (h *IngestHandler) HandleIngestSingle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 65536)

	var req singleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid device update format")
		return
	}
	if req.ListenerMAC == "" || req.Device == nil || req.Device.MAC == "" {
		writeError(w, http.StatusBadRequest, "Invalid device update format")
		return
	}

	device, stats, err := h.Service.IngestOne(r.Context(), *req.Device, req.ListenerMAC)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"device":  device,
		"stats":   stats,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
