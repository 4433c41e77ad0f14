package dedupe

import (
	"context"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// damage is the last tick seen for a label.
type damage struct {
	targetID int
	time     int64
}

// DamageDeduper cleans the damage-taken stream.
type DamageDeduper struct {
	settings
}

// NewDamageDeduper creates a damage deduplicator. Without WithNames it keeps nothing.
func NewDamageDeduper(opts ...Option) *DamageDeduper {
	return &DamageDeduper{settings: newSettings(opts)}
}

// Dedupe returns the cleaned, time-ordered damage markers for the fight.
// Events must already be sorted by timestamp.
func (d *DamageDeduper) Dedupe(_ context.Context, fight model.Fight, events []model.DamageEvent) []model.Marker {
	kept := make([]model.Marker, 0, len(events))
	lastSeen := make(map[string]damage)

	for _, event := range events {
		if event.Type != model.DamageType {
			metrics.RecordMarkerDropped(string(model.StreamDamageTaken), ReasonWrongType)
			continue
		}
		if event.Ability == nil || event.TargetID == nil {
			metrics.RecordMarkerDropped(string(model.StreamDamageTaken), ReasonMalformed)
			continue
		}
		if !d.allowed(event.Ability.Name) {
			metrics.RecordMarkerDropped(string(model.StreamDamageTaken), ReasonNotAllowed)
			continue
		}

		m := model.NewMarker(fight.Offset(event.Timestamp), 0, d.label(event.Ability.Name), model.StreamDamageTaken, event)
		current := damage{targetID: *event.TargetID, time: m.Time}

		prev, seen := lastSeen[m.Label]
		// The reference moves to every tick, dropped or not.
		lastSeen[m.Label] = current
		if seen && current.targetID != prev.targetID && current.time-prev.time < d.splashWindow {
			metrics.RecordMarkerDropped(string(model.StreamDamageTaken), ReasonSplash)
			continue
		}
		kept = append(kept, m)
	}

	metrics.RecordMarkersKept(string(model.StreamDamageTaken), len(kept))
	return kept
}
