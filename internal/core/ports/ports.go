package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

// DeviceRegistry is the in-memory aggregation engine. It owns all
// merge/create logic for the live device set.
type DeviceRegistry interface {
	// ProcessSighting merges a sighting into the registry, creating a new
	// record if the address is unknown. Returns the resulting record and
	// whether it was newly created.
	ProcessSighting(ctx context.Context, s domain.Sighting, listenerMAC string) (domain.Device, bool)
	GetDevice(ctx context.Context, mac string) (domain.Device, bool)
	GetAllDevices(ctx context.Context) []domain.Device
	// ListDevices returns devices in dashboard order: named before unnamed,
	// classified before generic, then by status priority, then by address.
	ListDevices(ctx context.Context) []domain.Device
	SetStatus(ctx context.Context, mac string, status domain.DeviceStatus) (domain.Device, error)
	Rename(ctx context.Context, mac, name string) (domain.Device, error)
	// EvictStale removes entries whose LastSeen is older than threshold.
	// Durable history is untouched. Returns the number of evicted records.
	EvictStale(ctx context.Context, now int64, threshold time.Duration) int
	GetActiveCount(ctx context.Context) int
	Clear(ctx context.Context)
}

// HistoryStore is the durable address history backing the registry. It
// persists across registry evictions and process restarts.
type HistoryStore interface {
	FirstSeen(mac string) (int64, bool)
	// RecordFirstSeen writes the timestamp only if no entry exists yet.
	RecordFirstSeen(mac string, ts int64)
	CustomName(mac string) (string, bool)
	SetCustomName(mac, name string) error
	// Sweep drops entries older than the retention window unless they carry
	// a custom name. Returns the number of dropped entries.
	Sweep(now int64) int
}

// NameResolver actively resolves a device's advertised name for vendors
// that hide it passively. Implementations must honor ctx deadlines; a
// failure is never fatal to sighting processing.
type NameResolver interface {
	Resolve(ctx context.Context, mac string) (string, error)
}

// SightingLog is the append-only audit trail of processed sightings.
// Writes are fire-and-forget from the ingestion path.
type SightingLog interface {
	AppendSighting(ctx context.Context, s domain.Sighting, listenerMAC string, batchID string) error
	SaveDeviceSnapshot(ctx context.Context, d domain.Device) error
}

// TrackerService is the core business surface consumed by the web layer.
type TrackerService interface {
	IngestBatch(ctx context.Context, sightings []domain.Sighting, listenerMAC string) (domain.TrackerStats, error)
	IngestOne(ctx context.Context, s domain.Sighting, listenerMAC string) (domain.Device, domain.TrackerStats, error)
	SetStatus(ctx context.Context, mac, status string) (domain.Device, error)
	Rename(ctx context.Context, mac, name string) (domain.Device, error)
	ListDevices(ctx context.Context) ([]domain.Device, domain.TrackerStats)
	GetStats(ctx context.Context) domain.TrackerStats
}

// UserRepository persists operator accounts.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int64, error)
}

// AuthService validates operator credentials and session tokens.
type AuthService interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Logout(ctx context.Context, token string)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}
