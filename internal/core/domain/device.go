package domain

// DeviceStatus is the trust classification of a tracked device.
type DeviceStatus string

const (
	StatusUnrecognised DeviceStatus = "unrecognised"
	StatusSuspicious   DeviceStatus = "suspicious"
	StatusTrusted      DeviceStatus = "trusted"
)

// IsValidStatus reports whether s is one of the known device statuses.
func IsValidStatus(s string) bool {
	switch DeviceStatus(s) {
	case StatusUnrecognised, StatusSuspicious, StatusTrusted:
		return true
	}
	return false
}

// UnknownType is the sentinel listeners report when they could not classify
// a device themselves.
const UnknownType = "Unknown"

// Sighting is one observation of a BLE advertisement reported by an edge
// listener. All fields except MAC and Signal are optional.
type Sighting struct {
	MAC         string   `json:"mac"`
	Signal      int      `json:"signal"` // dBm
	Name        string   `json:"name,omitempty"`
	Type        string   `json:"type,omitempty"`
	PreviousMAC string   `json:"previousMac,omitempty"`
	Services    []string `json:"services,omitempty"`
	ListenerMAC string   `json:"listenerMac,omitempty"`
}

// RawDetails is the last-seen advertisement snapshot kept on a device.
type RawDetails struct {
	Vendor   string   `json:"vendor"`
	MAC      string   `json:"mac"`
	Services []string `json:"services"`
}

// Device is the aggregated record for one hardware address. It is the unit
// of state owned by the registry; repeated sightings of the same address
// merge into a single Device.
type Device struct {
	ID              int64        `json:"id"`
	MAC             string       `json:"mac"`
	Vendor          string       `json:"vendor"`
	DisplayName     string       `json:"displayName"`
	DeviceType      string       `json:"deviceType"`
	SignalStrength  int          `json:"signalStrength"` // strongest reading seen, dBm
	Distance        float64      `json:"distance"`       // meters, derived from signal
	Status          DeviceStatus `json:"status"`
	NearestListener string       `json:"nearestListener"`
	FirstSeen       int64        `json:"firstSeen"` // epoch ms, stable once assigned
	LastSeen        int64        `json:"lastSeen"`  // epoch ms
	Appearances     int          `json:"appearances"`
	PreviousMACs    []string     `json:"previousMacs"`
	Details         RawDetails   `json:"details"`
}

// HasPreviousMAC reports whether mac was already recorded as a rotated-out
// address of this device.
func (d *Device) HasPreviousMAC(mac string) bool {
	for _, m := range d.PreviousMACs {
		if m == mac {
			return true
		}
	}
	return false
}

// TrackerStats is the aggregated snapshot returned with every API response.
type TrackerStats struct {
	TotalDevices int `json:"totalDevices"`
	Listeners    int `json:"listeners"`
	Suspicious   int `json:"suspicious"`
}
