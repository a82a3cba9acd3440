package storage

import (
	"context"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
)

// SQLiteAdapter implements the sighting audit log and the user repository
// on a single SQLite database using GORM.
type SQLiteAdapter struct {
	db *gorm.DB
}

var _ ports.SightingLog = (*SQLiteAdapter)(nil)

// SightingModel is one row of the append-only sighting audit trail.
type SightingModel struct {
	ID          uint   `gorm:"primaryKey"`
	BatchID     string `gorm:"index"`
	MAC         string `gorm:"index"`
	ListenerMAC string
	Signal      int
	Name        string
	Type        string
	PreviousMAC string
	Services    string // comma-joined service identifiers
	ReceivedAt  time.Time
}

// DeviceSnapshotModel is the last persisted state of an aggregated device.
type DeviceSnapshotModel struct {
	MAC             string `gorm:"primaryKey"`
	Vendor          string
	DisplayName     string
	DeviceType      string
	SignalStrength  int
	Distance        float64
	Status          string
	NearestListener string
	FirstSeen       int64
	LastSeen        int64
	Appearances     int
	PreviousMACs    string // comma-joined
	UpdatedAt       time.Time
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SightingModel{}, &DeviceSnapshotModel{}, &domain.User{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_sightings_received_at ON sighting_models(received_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_snapshots_last_seen ON device_snapshot_models(last_seen)")

	return &SQLiteAdapter{db: db}, nil
}

// AppendSighting records one processed sighting in the audit trail.
func (a *SQLiteAdapter) AppendSighting(ctx context.Context, s domain.Sighting, listenerMAC, batchID string) error {
	row := SightingModel{
		BatchID:     batchID,
		MAC:         s.MAC,
		ListenerMAC: listenerMAC,
		Signal:      s.Signal,
		Name:        s.Name,
		Type:        s.Type,
		PreviousMAC: s.PreviousMAC,
		Services:    strings.Join(s.Services, ","),
		ReceivedAt:  time.Now(),
	}
	return a.db.WithContext(ctx).Create(&row).Error
}

// SaveDeviceSnapshot upserts the aggregated state of one device.
func (a *SQLiteAdapter) SaveDeviceSnapshot(ctx context.Context, d domain.Device) error {
	row := DeviceSnapshotModel{
		MAC:             d.MAC,
		Vendor:          d.Vendor,
		DisplayName:     d.DisplayName,
		DeviceType:      d.DeviceType,
		SignalStrength:  d.SignalStrength,
		Distance:        d.Distance,
		Status:          string(d.Status),
		NearestListener: d.NearestListener,
		FirstSeen:       d.FirstSeen,
		LastSeen:        d.LastSeen,
		Appearances:     d.Appearances,
		PreviousMACs:    strings.Join(d.PreviousMACs, ","),
	}
	return a.db.WithContext(ctx).Save(&row).Error
}

// CountSightings returns the audit trail size, used by tests and stats.
func (a *SQLiteAdapter) CountSightings(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&SightingModel{}).Count(&count).Error
	return count, err
}

// Close releases the underlying database handle.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
