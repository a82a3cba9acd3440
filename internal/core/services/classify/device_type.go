package classify

import (
	"regexp"
	"strings"
)

var (
	appleModelRe    = regexp.MustCompile(`(?i)\b(iphone|ipad|macbook|airpods|watch|imac|mac mini|mac pro)\b`)
	appleModifierRe = regexp.MustCompile(`(?i)\b(1[1-4]|X|XS|XR|SE|pro|air|max)\b`)
	samsungModelRe  = regexp.MustCompile(`(?i)\b(s[0-9]+|note|fold|flip|tab|ultra|plus)\b`)
)

// Advertised GATT service identifiers used as last-resort Apple signals.
const (
	serviceGenericAccess = "0x2A00" // seen on AirPods advertisements
	serviceDeviceInfo    = "0x180A" // seen on Apple Watch advertisements
)

// genericVendors get a plain "<Vendor> Device" label.
var genericVendors = map[string]bool{
	"Google":  true,
	"OnePlus": true,
	"Xiaomi":  true,
	"Huawei":  true,
	"Realme":  true,
	"Oppo":    true,
}

// IdentifyDeviceType derives a human-readable category/model label from the
// resolved vendor, the advertised display name, and the service identifiers.
// A reported display name always wins over a synthesized label. Never fails.
func IdentifyDeviceType(mac, displayName, vendor string, services []string) string {
	name := strings.ToLower(displayName)

	// Reported names win; synthesized labels are the fallback only.
	defaultName := func(kind, model string) string {
		if displayName != "" {
			return displayName
		}
		if model != "" {
			return kind + " " + model
		}
		return kind
	}

	switch vendor {
	case "Apple":
		if m := appleModelRe.FindString(name); m != "" {
			modifier := appleModifierRe.FindString(name)
			switch strings.ToLower(m) {
			case "iphone":
				return defaultName("iPhone", strings.ToUpper(modifier))
			case "ipad":
				return defaultName("iPad", strings.ToUpper(modifier))
			case "macbook":
				return defaultName("MacBook", modifier)
			case "airpods":
				return defaultName("AirPods", modifier)
			case "watch":
				return defaultName("Apple Watch", "")
			case "imac":
				return defaultName("iMac", "")
			case "mac mini":
				return defaultName("Mac Mini", "")
			case "mac pro":
				return defaultName("Mac Pro", "")
			}
		}
		if containsService(services, serviceGenericAccess) {
			return defaultName("AirPods", "")
		}
		if containsService(services, serviceDeviceInfo) {
			return defaultName("Apple Watch", "")
		}
		return defaultName("Apple Device", "")

	case "Microsoft":
		if strings.Contains(name, "surface") {
			return defaultName("Surface", "")
		}
		if strings.Contains(name, "xbox") {
			return defaultName("Xbox", "")
		}
		return defaultName("Windows Device", "")

	case "Samsung":
		if strings.Contains(name, "galaxy") {
			model := samsungModelRe.FindString(name)
			return defaultName("Samsung Galaxy", strings.ToUpper(model))
		}
		return defaultName("Samsung Device", "")
	}

	if genericVendors[vendor] {
		return defaultName(vendor+" Device", "")
	}

	return "Unknown Device"
}

func containsService(services []string, id string) bool {
	for _, s := range services {
		if s == id {
			return true
		}
	}
	return false
}
