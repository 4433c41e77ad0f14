package tracks_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/tracks"
	. "github.com/smartystreets/goconvey/convey"
)

func marker(time, duration int64, label string, source model.Stream) model.Marker {
	return model.NewMarker(time, duration, label, source, nil)
}

func TestMerge(t *testing.T) {
	Convey("Given cleaned cast and damage markers", t, func() {
		casts := []model.Marker{
			marker(0, 2000, "cast-0", model.StreamCasts),
			marker(3000, 0, "cast-3000", model.StreamCasts),
			marker(8000, 0, "cast-8000", model.StreamCasts),
		}
		damage := []model.Marker{
			marker(1000, 0, "dmg-1000", model.StreamDamageTaken),
			marker(3000, 0, "dmg-3000", model.StreamDamageTaken),
		}

		Convey("When merging them", func() {
			merged := tracks.Merge(casts, damage)

			Convey("Then the result is chronological with casts first on ties", func() {
				labels := make([]string, len(merged))
				for i, m := range merged {
					labels[i] = m.Label
				}
				So(labels, ShouldResemble, []string{"cast-0", "dmg-1000", "cast-3000", "dmg-3000", "cast-8000"})
			})

			Convey("And the inputs are left untouched", func() {
				So(casts[1].Label, ShouldEqual, "cast-3000")
				So(damage, ShouldHaveLength, 2)
			})
		})

		Convey("When merging empty streams", func() {
			So(tracks.Merge(nil, nil), ShouldBeEmpty)
		})

		Convey("When merging shuffled input", func() {
			r := rand.New(rand.NewSource(7))
			var a, b []model.Marker
			for i := 0; i < 200; i++ {
				a = append(a, marker(r.Int63n(1000), 0, "a", model.StreamCasts))
				b = append(b, marker(r.Int63n(1000), 0, "b", model.StreamDamageTaken))
			}
			merged := tracks.Merge(a, b)

			Convey("Then time never decreases", func() {
				for i := 1; i < len(merged); i++ {
					So(merged[i].Time, ShouldBeGreaterThanOrEqualTo, merged[i-1].Time)
				}
			})
		})
	})
}

func TestAssigner(t *testing.T) {
	Convey("Given an assigner with the default spacing", t, func() {
		ctx := context.Background()
		a := tracks.NewAssigner()
		So(a.MinGap(), ShouldEqual, tracks.DefaultMinGap)

		Convey("When placing markers at 0, 1000 and 9000", func() {
			markers := []model.Marker{
				marker(0, 0, "one", model.StreamCasts),
				marker(1000, 0, "two", model.StreamCasts),
				marker(9000, 0, "three", model.StreamCasts),
			}
			out := a.Assign(ctx, markers)

			Convey("Then the third marker returns to track 0", func() {
				So(markers[0].Track, ShouldEqual, 0)
				So(markers[1].Track, ShouldEqual, 1)
				So(markers[2].Track, ShouldEqual, 0)
				So(out, ShouldHaveLength, 2)
				So(out[0].Index, ShouldEqual, 0)
				So(out[0].Markers, ShouldHaveLength, 2)
				So(out[0].Markers[1].Label, ShouldEqual, "three")
				So(out[1].Index, ShouldEqual, 1)
			})
		})

		Convey("When a cast bar is still running", func() {
			markers := []model.Marker{
				marker(0, 4000, "long", model.StreamCasts),
				marker(8000, 0, "early", model.StreamCasts),
				marker(9000, 0, "exact", model.StreamCasts),
			}
			a.Assign(ctx, markers)

			Convey("Then spacing is measured from the end of the bar", func() {
				So(markers[1].Track, ShouldEqual, 1)
				So(markers[2].Track, ShouldEqual, 0)
			})
		})

		Convey("When a custom spacing is configured", func() {
			markers := []model.Marker{marker(0, 0, "a", model.StreamCasts), marker(1000, 0, "b", model.StreamCasts)}
			tracks.NewAssigner(tracks.WithMinGap(1000)).Assign(ctx, markers)

			Convey("Then both fit on one track", func() {
				So(markers[1].Track, ShouldEqual, 0)
			})
		})

		Convey("When there is nothing to place", func() {
			So(a.Assign(ctx, nil), ShouldBeEmpty)
		})

		Convey("When placing a dense random timeline", func() {
			r := rand.New(rand.NewSource(42))
			var casts, damage []model.Marker
			for i := 0; i < 300; i++ {
				casts = append(casts, marker(r.Int63n(600_000), r.Int63n(6000), "c", model.StreamCasts))
				damage = append(damage, marker(r.Int63n(600_000), 0, "d", model.StreamDamageTaken))
			}
			merged := tracks.Merge(casts, damage)
			out := a.Assign(ctx, merged)

			Convey("Then every marker has a non-negative track", func() {
				placed := 0
				for _, m := range merged {
					So(m.Track, ShouldBeGreaterThanOrEqualTo, 0)
				}
				for i, tr := range out {
					So(tr.Index, ShouldEqual, i)
					placed += len(tr.Markers)
				}
				So(placed, ShouldEqual, len(merged))
			})

			Convey("And adjacent markers on a track keep the spacing", func() {
				for _, tr := range out {
					for i := 1; i < len(tr.Markers); i++ {
						So(tr.Markers[i].Time-tr.Markers[i-1].EndTime(), ShouldBeGreaterThanOrEqualTo, tracks.DefaultMinGap)
						So(tr.Markers[i].Time, ShouldBeGreaterThanOrEqualTo, tr.Markers[i-1].Time)
					}
				}
			})

			Convey("And each marker sits on the lowest track that fit", func() {
				lastEnd := map[int]int64{}
				for _, m := range merged {
					for lower := 0; lower < m.Track; lower++ {
						So(lastEnd[lower], ShouldBeGreaterThan, m.Time-tracks.DefaultMinGap)
					}
					lastEnd[m.Track] = m.EndTime()
				}
			})
		})
	})
}
