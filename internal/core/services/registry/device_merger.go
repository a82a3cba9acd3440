package registry

import (
	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

// DeviceMerger folds a new sighting into an existing device record.
type DeviceMerger struct{}

// NewDeviceMerger creates a new DeviceMerger.
func NewDeviceMerger() *DeviceMerger {
	return &DeviceMerger{}
}

// Merge applies the sighting to 'existing'. Signal comparison, appearance
// count and rotation tracking form one atomic unit; the caller holds the
// shard lock for the whole call.
func (m *DeviceMerger) Merge(existing *domain.Device, s domain.Sighting, listenerMAC string, now int64) {
	// A reading closer to 0 dBm is stronger; the strongest one seen wins
	// and pins the nearest listener.
	if abs(s.Signal) < abs(existing.SignalStrength) {
		existing.SignalStrength = s.Signal
		existing.NearestListener = listenerMAC
		existing.Distance = EstimateDistance(s.Signal)
	}

	existing.Appearances++
	existing.LastSeen = now

	// A record never lists its own current address as a rotation.
	if s.PreviousMAC != "" && s.PreviousMAC != existing.MAC && !existing.HasPreviousMAC(s.PreviousMAC) {
		existing.PreviousMACs = append(existing.PreviousMACs, s.PreviousMAC)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
