package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyDeviceType_ReportedNameWins(t *testing.T) {
	// Any branch that composes a label must still prefer the reported name.
	got := IdentifyDeviceType("00:03:93:00:00:01", "Living Room iPhone", "Apple", nil)
	assert.Equal(t, "Living Room iPhone", got)

	got = IdentifyDeviceType("00:15:5D:00:00:01", "My Surface", "Microsoft", nil)
	assert.Equal(t, "My Surface", got)
}

func TestIdentifyDeviceType_AppleComposition(t *testing.T) {
	// With no reported name there is nothing to prefer, so the label is
	// synthesized from keyword plus modifier.
	assert.Equal(t, "Apple Device", IdentifyDeviceType("00:03:93:00:00:01", "", "Apple", nil))

	// Service identifiers as last resort
	assert.Equal(t, "AirPods", IdentifyDeviceType("00:03:93:00:00:01", "", "Apple", []string{"0x2A00"}))
	assert.Equal(t, "Apple Watch", IdentifyDeviceType("00:03:93:00:00:01", "", "Apple", []string{"0x180A"}))
}

func TestIdentifyDeviceType_Microsoft(t *testing.T) {
	assert.Equal(t, "Windows Device", IdentifyDeviceType("00:15:5D:00:00:01", "", "Microsoft", nil))
}

func TestIdentifyDeviceType_Samsung(t *testing.T) {
	assert.Equal(t, "Samsung Device", IdentifyDeviceType("00:07:AB:00:00:01", "", "Samsung", nil))
}

func TestIdentifyDeviceType_GenericVendors(t *testing.T) {
	for _, vendor := range []string{"Google", "OnePlus", "Xiaomi", "Huawei", "Realme", "Oppo"} {
		got := IdentifyDeviceType("FE:FE:FE:00:00:00", "", vendor, nil)
		assert.Equal(t, vendor+" Device", got, "vendor %s", vendor)
	}
}

func TestIdentifyDeviceType_UnknownVendor(t *testing.T) {
	// Unknown vendors yield the generic label even when a name is present;
	// the name-preference rule applies only inside vendor branches.
	assert.Equal(t, "Unknown Device", IdentifyDeviceType("FE:FE:FE:00:00:00", "mystery", "Unknown", nil))
	assert.Equal(t, "Unknown Device", IdentifyDeviceType("FE:FE:FE:00:00:00", "", "", nil))
}
