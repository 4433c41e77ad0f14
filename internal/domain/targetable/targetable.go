// Package targetable turns targetability updates from the summary stream into
// markers on the reserved untargetable track.
package targetable

import (
	"context"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// Default marker labels.
const (
	DefaultNotTargetableLabel = "not targetable"
	DefaultTargetableLabel    = "targetable"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLabels overrides the labels used for both states. Empty values keep the default.
func WithLabels(notTargetable, targetable string) Option {
	return func(e *Extractor) {
		if notTargetable != "" {
			e.notTargetable = notTargetable
		}
		if targetable != "" {
			e.targetable = targetable
		}
	}
}

// Extractor builds untargetable-track markers. It does not deduplicate.
type Extractor struct {
	notTargetable string
	targetable    string
}

// NewExtractor creates an extractor with the default labels.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		notTargetable: DefaultNotTargetableLabel,
		targetable:    DefaultTargetableLabel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one marker per event carrying a targetable flag, in input order.
func (e *Extractor) Extract(_ context.Context, fight model.Fight, events []model.SummaryEvent) []model.Marker {
	markers := make([]model.Marker, 0)
	for _, event := range events {
		if event.Targetable == nil {
			continue
		}
		label := e.targetable
		if *event.Targetable == 0 {
			label = e.notTargetable
		}
		m := model.NewMarker(fight.Offset(event.Timestamp), 0, label, model.StreamSummary, event)
		m.Color = model.UntargetableColor
		m.Track = model.UntargetableTrack
		markers = append(markers, m)
	}
	metrics.RecordMarkersKept(string(model.StreamSummary), len(markers))
	return markers
}
