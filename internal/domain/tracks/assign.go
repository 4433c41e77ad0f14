package tracks

import (
	"context"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// DefaultMinGap is the minimum spacing in milliseconds between the end of one
// marker and the start of the next on the same track.
const DefaultMinGap = 5000

// Option applies a configuration option to the Assigner.
type Option func(*Assigner)

// WithMinGap sets the minimum spacing between markers on a track.
func WithMinGap(ms int64) Option {
	return func(a *Assigner) {
		if ms >= 0 {
			a.minGap = ms
		}
	}
}

// Assigner places markers on tracks first-fit: each marker goes to the lowest
// track whose last marker ended at least minGap before it starts. This is a
// greedy placement; the track count is not guaranteed to be minimal.
type Assigner struct {
	minGap int64
}

// NewAssigner creates an assigner with the default spacing.
func NewAssigner(opts ...Option) *Assigner {
	a := &Assigner{minGap: DefaultMinGap}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MinGap returns the configured spacing.
func (a *Assigner) MinGap() int64 { return a.minGap }

// Assign stamps a track index on every marker and returns the tracks numbered
// 0..k. Markers must be ordered by time. The input slice is updated in place.
func (a *Assigner) Assign(_ context.Context, markers []model.Marker) []model.Track {
	var tracks []model.Track
	for i := range markers {
		m := &markers[i]
		index := a.firstFit(tracks, m.Time)
		if index == len(tracks) {
			tracks = append(tracks, model.Track{Index: index})
		}
		m.Track = index
		tracks[index].Markers = append(tracks[index].Markers, *m)
		metrics.RecordMarkerPlaced(index)
	}
	metrics.UpdateTracksAssigned(len(tracks))
	return tracks
}

// firstFit returns the lowest eligible track index, or len(tracks) when a new
// track is needed.
func (a *Assigner) firstFit(tracks []model.Track, start int64) int {
	for i, t := range tracks {
		last := t.Markers[len(t.Markers)-1]
		if last.EndTime() <= start-a.minGap {
			return i
		}
	}
	return len(tracks)
}
