package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/blemap/internal/core/ports"
	"github.com/lcalzada-xor/blemap/internal/core/services/registry"
)

// DeviceHandler exposes the device list and the per-device operations.
type DeviceHandler struct {
	Service ports.TrackerService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(service ports.TrackerService) *DeviceHandler {
	return &DeviceHandler{Service: service}
}

// HandleList returns the sorted device list with stats.
func (h *DeviceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	devices, stats := h.Service.ListDevices(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"stats":   stats,
	})
}

// HandleStats returns the aggregate snapshot only.
func (h *DeviceHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.GetStats(r.Context()))
}

// HandleSetStatus overrides a device status.
func (h *DeviceHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	device, err := h.Service.SetStatus(r.Context(), mac, req.Status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"device":  device,
	})
}

// HandleRename assigns an operator name, persisted across restarts.
func (h *DeviceHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid name provided")
		return
	}

	device, err := h.Service.Rename(r.Context(), mac, req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"device":  device,
	})
}

func (h *DeviceHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "Device not found")
	case errors.Is(err, registry.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid name provided")
	case errors.Is(err, registry.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Invalid status")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
