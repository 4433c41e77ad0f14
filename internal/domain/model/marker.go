// Package model contains domain models passed between layers.
package model

// Kind is the marker type understood by the timeline renderer.
type Kind string

// KindInfo is the only marker kind the generator emits.
const KindInfo Kind = "Info"

// Stream names the event stream a marker was built from.
type Stream string

// Event streams.
const (
	StreamCasts       Stream = "casts"
	StreamDamageTaken Stream = "damage-taken"
	StreamSummary     Stream = "summary"
)

// Track indices with special meaning.
const (
	// Unassigned marks a marker that has not been placed on a track yet.
	Unassigned = -2
	// UntargetableTrack is reserved for targetability markers.
	UntargetableTrack = -1
)

// Display defaults.
const (
	DefaultColor      = "#217ff5"
	UntargetableColor = "#b7b7b7"
)

// Marker is one renderable timeline event. Time and Duration are milliseconds
// relative to the fight start.
type Marker struct {
	Time     int64
	Kind     Kind
	Duration int64
	Label    string
	Source   Stream
	Raw      any // event the marker was built from
	Color    string
	ShowText bool
	Track    int
}

// NewMarker builds an unassigned marker with the default display attributes.
func NewMarker(time, duration int64, label string, source Stream, raw any) Marker {
	return Marker{
		Time:     time,
		Kind:     KindInfo,
		Duration: duration,
		Label:    label,
		Source:   source,
		Raw:      raw,
		Color:    DefaultColor,
		ShowText: true,
		Track:    Unassigned,
	}
}

// EndTime returns the offset at which the marker's cast bar finishes.
func (m Marker) EndTime() int64 {
	return m.Time + m.Duration
}

// Track is a lane of markers ordered by time.
type Track struct {
	Index   int
	Markers []Marker
}
