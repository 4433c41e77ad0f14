// Package tracks merges cleaned marker streams and packs them onto parallel,
// non-colliding timeline tracks.
package tracks

import (
	"sort"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
)

// Merge concatenates the streams in argument order and sorts the result by
// time. Markers with equal times keep their concatenation order.
func Merge(streams ...[]model.Marker) []model.Marker {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]model.Marker, 0, total)
	for _, s := range streams {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time < merged[j].Time
	})
	return merged
}
