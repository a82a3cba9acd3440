package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

func TestExportDeviceSurvey(t *testing.T) {
	devices := []domain.Device{
		{
			MAC:            "AA:BB:CC:DD:EE:FF",
			DisplayName:    "Dave's iPhone",
			DeviceType:     "iPhone 14",
			Vendor:         "Apple",
			SignalStrength: -62,
			Distance:       0.4,
			Status:         domain.StatusTrusted,
			Appearances:    12,
		},
		{
			MAC:            "11:22:33:44:55:66",
			DisplayName:    "hidden beacon",
			DeviceType:     "Unknown Device",
			Vendor:         "Unknown",
			SignalStrength: -20,
			Distance:       0.0,
			Status:         domain.StatusSuspicious,
			Appearances:    48,
		},
	}
	stats := domain.TrackerStats{TotalDevices: 2, Listeners: 1, Suspicious: 1}

	data, err := NewPDFExporter().ExportDeviceSurvey(devices, stats)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportDeviceSurvey_EmptyList(t *testing.T) {
	data, err := NewPDFExporter().ExportDeviceSurvey(nil, domain.TrackerStats{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactlyten", truncate("exactlyten", 10))
	out := truncate("a device name well past the limit", 10)
	assert.Len(t, []rune(out), 10)
}
