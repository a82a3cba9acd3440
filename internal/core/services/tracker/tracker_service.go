package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
	"github.com/lcalzada-xor/blemap/internal/core/services/registry"
	"github.com/lcalzada-xor/blemap/internal/telemetry"
)

var _ ports.TrackerService = (*TrackerService)(nil)

// maxConcurrentSightings bounds per-batch fan-out so a large batch cannot
// open an unbounded number of enrichment round trips at once.
const maxConcurrentSightings = 8

// TrackerService implements ports.TrackerService. It owns the listener set
// and batch orchestration; all per-device logic lives in the registry.
type TrackerService struct {
	registry ports.DeviceRegistry
	log      ports.SightingLog

	mu        sync.RWMutex
	listeners map[string]struct{}

	evictThreshold time.Duration

	// onUpdate, when set, is invoked for every merged or created record.
	// The web socket broadcaster hooks in here.
	onUpdate func(domain.Device)
}

// NewTrackerService creates the orchestration service. log may be nil to
// disable the audit trail.
func NewTrackerService(reg ports.DeviceRegistry, log ports.SightingLog) *TrackerService {
	return &TrackerService{
		registry:       reg,
		log:            log,
		listeners:      make(map[string]struct{}),
		evictThreshold: registry.StaleThreshold,
	}
}

// SetUpdateHook registers a callback for processed device records. Must be
// called before ingestion starts.
func (t *TrackerService) SetUpdateHook(fn func(domain.Device)) {
	t.onUpdate = fn
}

// IngestBatch processes a batch of sightings from one listener. Sightings
// for distinct devices run in parallel; the call returns only once every
// per-device enrichment has settled. Stale entries are evicted afterwards.
func (t *TrackerService) IngestBatch(ctx context.Context, sightings []domain.Sighting, listenerMAC string) (domain.TrackerStats, error) {
	t.registerListener(listenerMAC)
	telemetry.BatchesIngested.WithLabelValues(listenerMAC).Inc()

	batchID := uuid.NewString()
	sem := make(chan struct{}, maxConcurrentSightings)
	var wg sync.WaitGroup

	for _, s := range sightings {
		wg.Add(1)
		sem <- struct{}{}
		go func(s domain.Sighting) {
			defer wg.Done()
			defer func() { <-sem }()
			t.process(ctx, s, listenerMAC, batchID)
		}(s)
	}
	wg.Wait()

	t.EvictStale(ctx)

	return t.GetStats(ctx), nil
}

// EvictStale drops devices silent past the staleness threshold. Runs after
// every batch and on a timer so devices fade out even when no listener is
// reporting.
func (t *TrackerService) EvictStale(ctx context.Context) int {
	evicted := t.registry.EvictStale(ctx, time.Now().UnixMilli(), t.evictThreshold)
	if evicted > 0 {
		telemetry.DevicesEvicted.Add(float64(evicted))
		slog.Info("evicted stale devices", "count", evicted)
	}
	telemetry.ActiveDevices.Set(float64(t.registry.GetActiveCount(ctx)))
	return evicted
}

// IngestOne processes a single sighting and returns the resulting record.
func (t *TrackerService) IngestOne(ctx context.Context, s domain.Sighting, listenerMAC string) (domain.Device, domain.TrackerStats, error) {
	t.registerListener(listenerMAC)
	device := t.process(ctx, s, listenerMAC, uuid.NewString())
	return device, t.GetStats(ctx), nil
}

func (t *TrackerService) process(ctx context.Context, s domain.Sighting, listenerMAC, batchID string) domain.Device {
	device, _ := t.registry.ProcessSighting(ctx, s, listenerMAC)
	telemetry.SightingsProcessed.WithLabelValues(listenerMAC).Inc()
	if device.Status == domain.StatusSuspicious {
		telemetry.SuspiciousVerdicts.Inc()
	}

	// Audit writes are fire-and-forget: a persistence failure never rolls
	// back or blocks the in-memory merge.
	if t.log != nil {
		if err := t.log.AppendSighting(ctx, s, listenerMAC, batchID); err != nil {
			slog.Error("failed to append sighting to audit log", "mac", s.MAC, "error", err)
		}
		if err := t.log.SaveDeviceSnapshot(ctx, device); err != nil {
			slog.Error("failed to persist device snapshot", "mac", device.MAC, "error", err)
		}
	}

	if t.onUpdate != nil {
		t.onUpdate(device)
	}
	return device
}

// SetStatus overrides a device status. An operator setting trusted makes it
// sticky against automatic recomputation.
func (t *TrackerService) SetStatus(ctx context.Context, mac, status string) (domain.Device, error) {
	if !domain.IsValidStatus(status) {
		return domain.Device{}, registry.ErrInvalidStatus
	}
	return t.registry.SetStatus(ctx, mac, domain.DeviceStatus(status))
}

// Rename assigns an operator name to a device.
func (t *TrackerService) Rename(ctx context.Context, mac, name string) (domain.Device, error) {
	return t.registry.Rename(ctx, mac, name)
}

// ListDevices returns the sorted device list with stats.
func (t *TrackerService) ListDevices(ctx context.Context) ([]domain.Device, domain.TrackerStats) {
	return t.registry.ListDevices(ctx), t.GetStats(ctx)
}

// GetStats returns the aggregate snapshot for API responses.
func (t *TrackerService) GetStats(ctx context.Context) domain.TrackerStats {
	suspicious := 0
	devices := t.registry.GetAllDevices(ctx)
	for _, d := range devices {
		if d.Status == domain.StatusSuspicious {
			suspicious++
		}
	}

	t.mu.RLock()
	listeners := len(t.listeners)
	t.mu.RUnlock()

	return domain.TrackerStats{
		TotalDevices: len(devices),
		Listeners:    listeners,
		Suspicious:   suspicious,
	}
}

func (t *TrackerService) registerListener(mac string) {
	t.mu.Lock()
	t.listeners[mac] = struct{}{}
	t.mu.Unlock()
}
