// Package types contains the external document format consumed by the
// timeline renderer.
package types

import (
	"sort"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
)

// File type tags.
const (
	FileTypeCombined   = "MarkerTracksCombined"
	FileTypeIndividual = "MarkerTrackIndividual"
)

const millisPerSecond = 1000

// Document is the combined marker file.
type Document struct {
	FileType string       `json:"fileType"`
	Tracks   []TrackBlock `json:"tracks"`
}

// TrackBlock is one track of the combined file.
type TrackBlock struct {
	FileType string        `json:"fileType"`
	Track    int           `json:"track"`
	Markers  []MarkerEntry `json:"markers"`
}

// MarkerEntry is a marker in its external representation. Times are seconds.
type MarkerEntry struct {
	Time        float64 `json:"time"`
	MarkerType  string  `json:"markerType"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	ShowText    bool    `json:"showText"`
}

// NewMarkerEntry converts a marker to its external representation.
func NewMarkerEntry(m model.Marker) MarkerEntry {
	return MarkerEntry{
		Time:        float64(m.Time) / millisPerSecond,
		MarkerType:  string(m.Kind),
		Duration:    float64(m.Duration) / millisPerSecond,
		Description: m.Label,
		Color:       m.Color,
		ShowText:    m.ShowText,
	}
}

// NewTrackBlock converts one track.
func NewTrackBlock(index int, markers []model.Marker) TrackBlock {
	entries := make([]MarkerEntry, len(markers))
	for i, m := range markers {
		entries[i] = NewMarkerEntry(m)
	}
	return TrackBlock{FileType: FileTypeIndividual, Track: index, Markers: entries}
}

// NewDocument builds the combined file. The untargetable track is always
// emitted first, followed by the packed tracks in ascending index order.
func NewDocument(untargetable []model.Marker, packed []model.Track) Document {
	ordered := make([]model.Track, len(packed))
	copy(ordered, packed)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	blocks := make([]TrackBlock, 0, len(ordered)+1)
	blocks = append(blocks, NewTrackBlock(model.UntargetableTrack, untargetable))
	for _, t := range ordered {
		blocks = append(blocks, NewTrackBlock(t.Index, t.Markers))
	}
	return Document{FileType: FileTypeCombined, Tracks: blocks}
}

// MarkerCount returns the number of markers across all tracks.
func (d Document) MarkerCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += len(t.Markers)
	}
	return n
}
