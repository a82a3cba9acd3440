package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

func TestMerge_DistanceFollowsAdoptedSignal(t *testing.T) {
	m := NewDeviceMerger()
	d := domain.Device{
		MAC:             "AA:BB:CC:DD:EE:FF",
		SignalStrength:  -89,
		Distance:        10.0,
		NearestListener: "L1",
		Appearances:     1,
	}

	m.Merge(&d, domain.Sighting{MAC: d.MAC, Signal: -69}, "L2", 2000)

	assert.Equal(t, -69, d.SignalStrength)
	assert.Equal(t, 1.0, d.Distance, "distance tracks the adopted reading")
	assert.Equal(t, "L2", d.NearestListener)
	assert.Equal(t, 2, d.Appearances)
	assert.Equal(t, int64(2000), d.LastSeen)
}

func TestMerge_WeakerSignalKeepsRecord(t *testing.T) {
	m := NewDeviceMerger()
	d := domain.Device{
		MAC:             "AA:BB:CC:DD:EE:FF",
		SignalStrength:  -40,
		Distance:        EstimateDistance(-40),
		NearestListener: "L1",
		Appearances:     3,
	}

	m.Merge(&d, domain.Sighting{MAC: d.MAC, Signal: -90}, "L2", 5000)

	assert.Equal(t, -40, d.SignalStrength)
	assert.Equal(t, "L1", d.NearestListener)
	assert.Equal(t, EstimateDistance(-40), d.Distance)
	// Bookkeeping still advances on every merge.
	assert.Equal(t, 4, d.Appearances)
	assert.Equal(t, int64(5000), d.LastSeen)
}

func TestMerge_SelfAddressIgnoredAsRotation(t *testing.T) {
	m := NewDeviceMerger()
	d := domain.Device{
		MAC:          "AA:BB:CC:DD:EE:FF",
		PreviousMACs: []string{"11:11:11:11:11:11"},
	}

	m.Merge(&d, domain.Sighting{MAC: d.MAC, Signal: -60, PreviousMAC: d.MAC}, "L1", 1000)

	assert.Equal(t, []string{"11:11:11:11:11:11"}, d.PreviousMACs)
}

func TestMerge_EqualMagnitudeKeepsExisting(t *testing.T) {
	m := NewDeviceMerger()
	d := domain.Device{
		MAC:             "AA:BB:CC:DD:EE:FF",
		SignalStrength:  -60,
		NearestListener: "L1",
	}

	m.Merge(&d, domain.Sighting{MAC: d.MAC, Signal: -60}, "L2", 1000)

	assert.Equal(t, "L1", d.NearestListener, "tie does not reassign the listener")
}
