package classify

import (
	"strings"
)

// ouiEntry is one row of the vendor prefix table. The table is kept as an
// ordered slice because the partial-prefix fallback scan takes the first
// match in table order; a plain map would make that lookup nondeterministic.
type ouiEntry struct {
	Prefix string // first three octets, "XX:XX:XX"
	Vendor string
}

// ouiTable maps the first three octets of a hardware address to a vendor.
// Order is significant, see ouiEntry.
var ouiTable = []ouiEntry{
	{"00:03:93", "Apple"},
	{"00:05:02", "Apple"},
	{"00:0A:27", "Apple"},
	{"00:0A:95", "Apple"},
	{"00:1E:52", "Apple"},
	{"00:22:41", "Apple"},
	{"00:23:32", "Apple"},
	{"00:25:00", "Apple"},
	{"00:26:BB", "Apple"},
	{"00:30:65", "Apple"},
	{"00:50:E4", "Apple"},
	{"00:56:CD", "Apple"},
	{"00:61:71", "Apple"},
	{"00:C6:10", "Apple"},
	{"04:15:52", "Apple"},
	{"04:26:65", "Apple"},
	{"04:48:9A", "Apple"},
	{"04:4B:ED", "Apple"},
	{"04:52:F3", "Apple"},
	{"04:54:53", "Apple"},
	{"14:10:9F", "Apple"},
	{"24:A0:74", "Apple"},
	{"28:6A:BA", "Apple"},
	{"34:C0:59", "Apple"},
	{"38:F9:D3", "Apple"},
	{"3C:07:54", "Apple"},
	{"3C:E1:A1", "Apple"},
	{"40:30:04", "Apple"},
	{"40:B3:95", "Apple"},
	{"44:00:10", "Apple"},
	{"58:B0:35", "Apple"},
	{"60:C5:47", "Apple"},
	{"64:B0:A6", "Apple"},
	{"70:3E:AC", "Apple"},
	{"78:CA:39", "Apple"},
	{"88:63:DF", "Apple"},
	{"88:66:A5", "Apple"},
	{"00:03:FF", "Microsoft"},
	{"00:12:5A", "Microsoft"},
	{"00:15:5D", "Microsoft"},
	{"00:17:FA", "Microsoft"},
	{"00:1D:D8", "Microsoft"},
	{"00:22:48", "Microsoft"},
	{"00:25:AE", "Microsoft"},
	{"00:50:F2", "Microsoft"},
	{"28:18:78", "Microsoft"},
	{"3C:83:75", "Microsoft"},
	{"48:86:E8", "Microsoft"},
	{"50:1A:C5", "Microsoft"},
	{"58:82:A8", "Microsoft"},
	{"60:45:BD", "Microsoft"},
	{"00:07:AB", "Samsung"},
	{"00:12:47", "Samsung"},
	{"00:15:99", "Samsung"},
	{"00:17:C9", "Samsung"},
	{"00:1C:43", "Samsung"},
	{"00:1A:11", "Google"},
	{"08:9E:08", "Google"},
	{"A4:77:33", "Google"},
	{"AC:C1:EE", "OnePlus"},
	{"94:65:2D", "OnePlus"},
	{"00:EC:0A", "Xiaomi"},
	{"04:CF:8C", "Xiaomi"},
	{"00:37:6D", "Huawei"},
	{"00:E0:FC", "Huawei"},
	{"04:BD:70", "Huawei"},
	{"00:E0:4C", "Realme"},
	{"48:EE:0C", "Oppo"},
	{"4C:B1:6C", "Oppo"},
	{"94:87:E0", "Xiaomi"},
}

// ouiIndex provides O(1) exact prefix lookups over ouiTable.
var ouiIndex = func() map[string]string {
	idx := make(map[string]string, len(ouiTable))
	for _, e := range ouiTable {
		idx[e.Prefix] = e.Vendor
	}
	return idx
}()

// vendorKeywords maps free-text hints to vendors. First matching set wins.
var vendorKeywords = []struct {
	Vendor   string
	Keywords []string
}{
	{"Apple", []string{"iphone", "ipad", "macbook", "airpods", "apple", "imac"}},
	{"Microsoft", []string{"windows", "surface", "xbox"}},
	{"Samsung", []string{"galaxy", "samsung"}},
	{"Google", []string{"pixel", "google"}},
	{"OnePlus", []string{"oneplus"}},
	{"Xiaomi", []string{"xiaomi"}},
	{"Huawei", []string{"huawei"}},
	{"Oppo", []string{"oppo"}},
}

// VendorUnknown is returned when no rule matches.
const VendorUnknown = "Unknown"

// IdentifyVendor resolves a vendor label for a hardware address, optionally
// disambiguated by a free-text type hint. It never fails; unmatched
// addresses classify as "Unknown".
func IdentifyVendor(mac, typeHint string) string {
	if mac == "" {
		return VendorUnknown
	}

	prefix := strings.ToUpper(substr(mac, 8))
	shortPrefix := strings.ToUpper(substr(mac, 5))

	if vendor, ok := ouiIndex[prefix]; ok {
		return vendor
	}

	// Partial match on the first two octets, first table entry wins.
	for _, e := range ouiTable {
		if strings.HasPrefix(e.Prefix, shortPrefix) {
			return e.Vendor
		}
	}

	hint := strings.ToLower(typeHint)
	for _, vk := range vendorKeywords {
		for _, kw := range vk.Keywords {
			if strings.Contains(hint, kw) {
				return vk.Vendor
			}
		}
	}

	return VendorUnknown
}

func substr(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
