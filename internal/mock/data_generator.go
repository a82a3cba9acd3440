package mock

import (
	"fmt"
	"math/rand"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

// Vendor OUI prefixes (first 3 bytes of MAC), drawn from the vendors the
// classifier knows about so generated fleets classify plausibly.
var vendorPrefixes = []string{
	"00:1E:52", // Apple
	"04:52:F3", // Apple
	"88:63:DF", // Apple
	"00:15:5D", // Microsoft
	"58:82:A8", // Microsoft
	"00:17:C9", // Samsung
	"00:1A:11", // Google
	"AC:C1:EE", // OnePlus
	"04:CF:8C", // Xiaomi
	"00:E0:FC", // Huawei
	"48:EE:0C", // Oppo
	"DE:AD:BE", // off-table, classifies as Unknown
}

// Advertised names seen in real BLE captures
var deviceNames = []string{
	"iPhone 13", "iPhone 14 Pro", "iPhone SE", "AirPods Pro",
	"MacBook Air", "Apple Watch", "iPad Pro",
	"Galaxy S22", "Galaxy Note 20", "Galaxy Tab",
	"Surface Laptop", "Xbox Wireless Controller",
	"Pixel 7", "OnePlus 9", "Mi Band 7",
	"", "", "", // many devices advertise no name at all
}

var serviceSets = [][]string{
	nil,
	{"0x180F"},
	{"0x2A00"},
	{"0x180A"},
	{"0x180F", "0x180A"},
}

// Generator produces plausible BLE sightings for mock mode and the
// simulated edge agent. A generator keeps a stable fleet so the same
// addresses reappear across batches the way real devices do.
type Generator struct {
	rng   *rand.Rand
	fleet []domain.Sighting
}

// NewGenerator creates a generator with a fleet of size devices.
func NewGenerator(seed int64, size int) *Generator {
	g := &Generator{rng: rand.New(rand.NewSource(seed))}
	for i := 0; i < size; i++ {
		g.fleet = append(g.fleet, g.newDevice())
	}
	return g
}

func (g *Generator) newDevice() domain.Sighting {
	prefix := vendorPrefixes[g.rng.Intn(len(vendorPrefixes))]
	mac := fmt.Sprintf("%s:%02X:%02X:%02X", prefix, g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(256))
	return domain.Sighting{
		MAC:      mac,
		Signal:   -30 - g.rng.Intn(60),
		Name:     deviceNames[g.rng.Intn(len(deviceNames))],
		Type:     domain.UnknownType,
		Services: serviceSets[g.rng.Intn(len(serviceSets))],
	}
}

// NextBatch returns a batch of sightings: mostly fleet devices with
// refreshed signal readings, occasionally a rotated or brand-new address.
func (g *Generator) NextBatch(size int) []domain.Sighting {
	batch := make([]domain.Sighting, 0, size)
	for i := 0; i < size; i++ {
		s := g.fleet[g.rng.Intn(len(g.fleet))]
		s.Signal = -30 - g.rng.Intn(60)

		// Occasional privacy rotation: new address, old one referenced.
		if g.rng.Float64() < 0.05 {
			old := s.MAC
			rotated := g.newDevice()
			rotated.Name = s.Name
			rotated.PreviousMAC = old
			s = rotated
		}
		batch = append(batch, s)
	}
	return batch
}

// ListenerMAC returns a stable fake listener address for an index.
func ListenerMAC(i int) string {
	return fmt.Sprintf("EC:94:CB:00:00:%02X", i)
}
