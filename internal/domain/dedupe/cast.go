// Package dedupe turns raw combat log streams into cleaned marker sequences,
// collapsing near-duplicate events that describe the same mechanic.
package dedupe

import (
	"context"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// CastDeduper cleans the hostile casts stream.
type CastDeduper struct {
	settings
}

// NewCastDeduper creates a cast deduplicator. Without WithNames it keeps nothing.
func NewCastDeduper(opts ...Option) *CastDeduper {
	return &CastDeduper{settings: newSettings(opts)}
}

// Candidates maps allow-listed, well-formed cast events to markers without
// deduplicating them.
func (d *CastDeduper) Candidates(_ context.Context, fight model.Fight, events []model.CastEvent) []model.Marker {
	candidates := make([]model.Marker, 0, len(events))
	for _, event := range events {
		if event.Ability == nil {
			metrics.RecordMarkerDropped(string(model.StreamCasts), ReasonMalformed)
			continue
		}
		if !d.allowed(event.Ability.Name) {
			metrics.RecordMarkerDropped(string(model.StreamCasts), ReasonNotAllowed)
			continue
		}
		candidates = append(candidates, model.NewMarker(
			fight.Offset(event.Timestamp),
			event.CastDuration(),
			d.label(event.Ability.Name),
			model.StreamCasts,
			event,
		))
	}
	return candidates
}

// Dedupe returns the cleaned, time-ordered cast markers for the fight.
// Events must already be sorted by timestamp.
func (d *CastDeduper) Dedupe(ctx context.Context, fight model.Fight, events []model.CastEvent) []model.Marker {
	candidates := d.Candidates(ctx, fight, events)

	kept := make([]model.Marker, 0, len(candidates))
	castEnds := make(map[string]int64) // label -> end of its latest cast bar
	var (
		last    model.Marker
		hasLast bool
	)

	for _, m := range candidates {
		if hasLast && m.Label == last.Label {
			// One cast hitting several targets at once.
			if m.Duration == last.Duration && m.Time-last.Time < d.castIgnoreWindow {
				metrics.RecordMarkerDropped(string(model.StreamCasts), ReasonMultiTarget)
				continue
			}
			// Hidden actors starting the same cast together: keep the longest bar.
			if m.Time == last.Time {
				if m.Duration < last.Duration {
					metrics.RecordMarkerDropped(string(model.StreamCasts), ReasonShorterCast)
					continue
				}
				kept = kept[:len(kept)-1]
				metrics.RecordMarkerDropped(string(model.StreamCasts), ReasonShorterCast)
			}
		}

		// Instant cast reported right after a finished cast bar.
		if m.Duration == 0 {
			if end, ok := castEnds[m.Label]; ok && m.Time-end < d.echoWindow {
				metrics.RecordMarkerDropped(string(model.StreamCasts), ReasonEcho)
				continue
			}
		}

		kept = append(kept, m)
		if m.Duration > 0 {
			castEnds[m.Label] = m.EndTime()
		}
		last, hasLast = m, true
	}

	metrics.RecordMarkersKept(string(model.StreamCasts), len(kept))
	return kept
}
