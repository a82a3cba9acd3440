package security

import (
	"strings"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

// Tunables for the suspicion heuristic.
const (
	// maxRotations is the largest previous-address count considered normal
	// privacy randomization.
	maxRotations = 3
	// implausibleSignal is a reading stronger than any plausible BLE
	// advertisement at realistic range.
	implausibleSignal = -30
	// rapidWindowMs flags many reappearances of a record younger than this.
	rapidWindowMs      = 300000
	rapidAppearances   = 10
	suspicionThreshold = 2
)

// factor is one boolean risk signal evaluated against a device record.
type factor struct {
	Name  string
	Holds func(d *domain.Device, now int64) bool
}

// factors is the fixed risk-factor set. The verdict is purely a count over
// these; no factor carries more weight than another.
var factors = []factor{
	{"excessive_rotation", func(d *domain.Device, _ int64) bool {
		return len(d.PreviousMACs) > maxRotations
	}},
	{"implausible_signal", func(d *domain.Device, _ int64) bool {
		return d.SignalStrength > implausibleSignal
	}},
	{"evasive_name", func(d *domain.Device, _ int64) bool {
		name := strings.ToLower(d.DisplayName)
		return strings.Contains(name, "hidden") || strings.Contains(name, "unknown")
	}},
	{"rapid_reappearance", func(d *domain.Device, now int64) bool {
		return d.Appearances > rapidAppearances && now-d.FirstSeen < rapidWindowMs
	}},
	{"flagged_type", func(d *domain.Device, _ int64) bool {
		t := strings.ToLower(d.DeviceType)
		return strings.Contains(t, "restricted") || strings.Contains(t, "spoofed")
	}},
}

// AnomalyScorer evaluates the fixed suspicion heuristic on device records.
// It is stateless; the verdict is deterministic given the record and now.
type AnomalyScorer struct{}

// NewAnomalyScorer creates a new AnomalyScorer.
func NewAnomalyScorer() *AnomalyScorer {
	return &AnomalyScorer{}
}

// IsSuspicious returns true iff at least two risk factors hold for d.
func (s *AnomalyScorer) IsSuspicious(d *domain.Device, now int64) bool {
	count := 0
	for _, f := range factors {
		if f.Holds(d, now) {
			count++
		}
	}
	return count >= suspicionThreshold
}

// ActiveFactors returns the names of the factors that hold for d. Used for
// diagnostics and the audit trail, not for the verdict itself.
func (s *AnomalyScorer) ActiveFactors(d *domain.Device, now int64) []string {
	var active []string
	for _, f := range factors {
		if f.Holds(d, now) {
			active = append(active, f.Name)
		}
	}
	return active
}
