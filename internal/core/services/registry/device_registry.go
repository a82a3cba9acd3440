package registry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
	"github.com/lcalzada-xor/blemap/internal/core/services/classify"
	"github.com/lcalzada-xor/blemap/internal/core/services/security"
	"github.com/lcalzada-xor/blemap/internal/telemetry"
)

const numShards = 16

// StaleThreshold is the default eviction window for silent devices.
const StaleThreshold = 300 * time.Second

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidName    = errors.New("invalid device name")
	ErrInvalidStatus  = errors.New("invalid device status")
)

type deviceShard struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
}

// DeviceRegistry is the sharded in-memory aggregation engine. Sightings for
// the same address serialize on their shard; distinct addresses proceed in
// parallel. Implements ports.DeviceRegistry.
type DeviceRegistry struct {
	shards  []*deviceShard
	merger  *DeviceMerger
	scorer  *security.AnomalyScorer
	history ports.HistoryStore

	resolver       ports.NameResolver
	resolveTimeout time.Duration

	nowFn func() int64
}

// NewDeviceRegistry creates a new sharded registry. resolver may be nil when
// no companion bridge is available.
func NewDeviceRegistry(history ports.HistoryStore, resolver ports.NameResolver, resolveTimeout time.Duration) *DeviceRegistry {
	r := &DeviceRegistry{
		shards:         make([]*deviceShard, numShards),
		merger:         NewDeviceMerger(),
		scorer:         security.NewAnomalyScorer(),
		history:        history,
		resolver:       resolver,
		resolveTimeout: resolveTimeout,
		nowFn:          func() int64 { return time.Now().UnixMilli() },
	}
	for i := 0; i < numShards; i++ {
		r.shards[i] = &deviceShard{devices: make(map[string]domain.Device)}
	}
	return r
}

func (r *DeviceRegistry) getShard(mac string) *deviceShard {
	hash := uint32(0)
	for i := 0; i < len(mac); i++ {
		hash = hash*31 + uint32(mac[i])
	}
	return r.shards[hash%uint32(len(r.shards))]
}

// EstimateDistance converts a signal reading to meters using the
// log-distance path-loss model with a −69 dBm reference at 1 m and a
// path-loss exponent of 2, rounded to one decimal.
func EstimateDistance(signal int) float64 {
	return math.Round(math.Pow(10, float64(-69-signal)/20.0)*10) / 10
}

// ProcessSighting merges a sighting into the registry per the aggregation
// contract: custom-name precedence, two-pass vendor classification and
// optional Apple name enrichment up front, then durable first-seen
// resolution and merge-or-create under the shard lock.
func (r *DeviceRegistry) ProcessSighting(ctx context.Context, s domain.Sighting, listenerMAC string) (domain.Device, bool) {
	now := r.nowFn()

	customName, hasCustom := r.history.CustomName(s.MAC)
	candidateName := s.Name
	if hasCustom {
		candidateName = customName
	}

	// First pass classifies the vendor from the address alone; the resolved
	// device type then feeds back into the second pass, where a type hint
	// can settle an address prefix the table does not cover.
	provisionalVendor := classify.IdentifyVendor(s.MAC, "")
	deviceType := s.Type
	if deviceType == "" || deviceType == domain.UnknownType {
		deviceType = classify.IdentifyDeviceType(s.MAC, candidateName, provisionalVendor, s.Services)
	}
	vendor := classify.IdentifyVendor(s.MAC, deviceType)

	if vendor == "Apple" && s.Name == "" && r.resolver != nil {
		rctx, cancel := context.WithTimeout(ctx, r.resolveTimeout)
		resolved, err := r.resolver.Resolve(rctx, s.MAC)
		cancel()
		if err != nil {
			telemetry.ResolverFailures.Inc()
			slog.Debug("name resolution failed", "mac", s.MAC, "error", err)
		} else if resolved != "" {
			s.Name = resolved
		}
	}

	shard := r.getShard(s.MAC)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Resolved under the shard lock so concurrent first sightings of one
	// address settle on a single durable timestamp. The store never
	// overwrites an existing entry.
	firstSeen, recorded := r.history.FirstSeen(s.MAC)
	if !recorded {
		firstSeen = now
	}
	r.history.RecordFirstSeen(s.MAC, firstSeen)

	if existing, ok := shard.devices[s.MAC]; ok {
		r.merger.Merge(&existing, s, listenerMAC, now)

		// Trusted is sticky; suspicious is recomputed on every merge.
		if existing.Status != domain.StatusTrusted {
			if r.scorer.IsSuspicious(&existing, now) {
				existing.Status = domain.StatusSuspicious
			} else {
				existing.Status = domain.StatusUnrecognised
			}
		}

		existing.DeviceType = deviceType
		existing.Vendor = vendor
		existing.Details.Vendor = vendor
		if hasCustom {
			existing.DisplayName = customName
		}
		// Guard against in-memory drift: durable history is authoritative.
		existing.FirstSeen = firstSeen

		shard.devices[s.MAC] = existing
		return existing, false
	}

	displayName := candidateName
	if displayName == "" {
		displayName = classify.IdentifyDeviceType(s.MAC, s.Name, vendor, s.Services)
	}

	var previous []string
	if s.PreviousMAC != "" && s.PreviousMAC != s.MAC {
		previous = []string{s.PreviousMAC}
	}

	services := s.Services
	if services == nil {
		services = []string{}
	}

	newDevice := domain.Device{
		ID:              now,
		MAC:             s.MAC,
		Vendor:          vendor,
		DisplayName:     displayName,
		DeviceType:      deviceType,
		SignalStrength:  s.Signal,
		Distance:        EstimateDistance(s.Signal),
		Status:          domain.StatusUnrecognised,
		NearestListener: listenerMAC,
		FirstSeen:       firstSeen,
		LastSeen:        now,
		Appearances:     1,
		PreviousMACs:    previous,
		Details: domain.RawDetails{
			Vendor:   vendor,
			MAC:      s.MAC,
			Services: services,
		},
	}

	shard.devices[s.MAC] = newDevice
	return newDevice, true
}

func (r *DeviceRegistry) GetDevice(ctx context.Context, mac string) (domain.Device, bool) {
	shard := r.getShard(mac)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	d, ok := shard.devices[mac]
	return d, ok
}

func (r *DeviceRegistry) GetAllDevices(ctx context.Context) []domain.Device {
	var all []domain.Device
	for _, shard := range r.shards {
		shard.mu.RLock()
		for _, d := range shard.devices {
			dCopy := d
			if d.PreviousMACs != nil {
				dCopy.PreviousMACs = append([]string(nil), d.PreviousMACs...)
			}
			all = append(all, dCopy)
		}
		shard.mu.RUnlock()
	}
	return all
}

// statusOrder ranks statuses for the dashboard: suspicious entries surface
// first, trusted ones sink last.
var statusOrder = map[domain.DeviceStatus]int{
	domain.StatusSuspicious:   0,
	domain.StatusUnrecognised: 1,
	domain.StatusTrusted:      2,
}

// ListDevices returns devices sorted named-before-unnamed, classified
// before generic, then by status priority. Address is the final tie-break
// so the order is fully deterministic.
func (r *DeviceRegistry) ListDevices(ctx context.Context) []domain.Device {
	devices := r.GetAllDevices(ctx)
	sort.Slice(devices, func(i, j int) bool {
		a, b := devices[i], devices[j]

		aNamed := a.DisplayName != "" && a.DisplayName != "Unknown Device"
		bNamed := b.DisplayName != "" && b.DisplayName != "Unknown Device"
		if aNamed != bNamed {
			return aNamed
		}

		aGeneric := a.DeviceType == "Unknown Device"
		bGeneric := b.DeviceType == "Unknown Device"
		if aGeneric != bGeneric {
			return bGeneric
		}

		if statusOrder[a.Status] != statusOrder[b.Status] {
			return statusOrder[a.Status] < statusOrder[b.Status]
		}

		return a.MAC < b.MAC
	})
	return devices
}

// SetStatus overrides a device's status. This is the only path that can set
// the sticky trusted state.
func (r *DeviceRegistry) SetStatus(ctx context.Context, mac string, status domain.DeviceStatus) (domain.Device, error) {
	shard := r.getShard(mac)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	d, ok := shard.devices[mac]
	if !ok {
		return domain.Device{}, ErrDeviceNotFound
	}
	d.Status = status
	shard.devices[mac] = d
	return d, nil
}

// Rename assigns an operator name, persisting it so it outlives eviction
// and overrides computed classification on every later sighting.
func (r *DeviceRegistry) Rename(ctx context.Context, mac, name string) (domain.Device, error) {
	if !domain.IsValidName(name) {
		return domain.Device{}, ErrInvalidName
	}

	shard := r.getShard(mac)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	d, ok := shard.devices[mac]
	if !ok {
		return domain.Device{}, ErrDeviceNotFound
	}

	if err := r.history.SetCustomName(mac, name); err != nil {
		// Non-fatal: in-memory state stays authoritative until the next
		// successful flush.
		slog.Error("failed to persist custom name", "mac", mac, "error", err)
	}

	d.DisplayName = name
	shard.devices[mac] = d
	return d, nil
}

// EvictStale removes entries not refreshed within threshold. Durable
// history is untouched; a recreated device keeps its original first-seen.
func (r *DeviceRegistry) EvictStale(ctx context.Context, now int64, threshold time.Duration) int {
	thresholdMs := threshold.Milliseconds()
	evicted := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		for mac, d := range shard.devices {
			if now-d.LastSeen > thresholdMs {
				delete(shard.devices, mac)
				evicted++
			}
		}
		shard.mu.Unlock()
	}
	return evicted
}

func (r *DeviceRegistry) GetActiveCount(ctx context.Context) int {
	count := 0
	for _, shard := range r.shards {
		shard.mu.RLock()
		count += len(shard.devices)
		shard.mu.RUnlock()
	}
	return count
}

// Clear wipes all in-memory state.
func (r *DeviceRegistry) Clear(ctx context.Context) {
	for _, shard := range r.shards {
		shard.mu.Lock()
		shard.devices = make(map[string]domain.Device)
		shard.mu.Unlock()
	}
}
