package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/smartystreets/goconvey/convey"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/config"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/types"
)

const testConfig = `
cast_names: [Raidwide]
damage_names: [Fireball]
translations:
  Raidwide: raid
`

func newFakeReportAPI() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/report/fights/abc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"fights":[{"id":2,"start_time":1000,"end_time":60000}]}`))
	})
	mux.HandleFunc("/v1/report/events/casts/abc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[
			{"timestamp":6000,"type":"begincast","ability":{"name":"Raidwide","guid":1},"duration":3000},
			{"timestamp":9000,"type":"cast","ability":{"name":"Raidwide","guid":1}}
		]}`))
	})
	mux.HandleFunc("/v1/report/events/damage-taken/abc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[{"timestamp":11000,"type":"damage","ability":{"name":"Fireball","guid":2},"targetID":1,"amount":100}]}`))
	})
	mux.HandleFunc("/v1/report/events/summary/abc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[{"timestamp":20000,"type":"targetabilityupdate","targetable":0}]}`))
	})
	return httptest.NewServer(mux)
}

func executeRoot(ctx context.Context, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(ctx)
	return stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given a report API and a config file", t, func() {
		srv := newFakeReportAPI()
		defer srv.Close()

		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "config.yaml")
		convey.So(os.WriteFile(cfgPath, []byte(testConfig), 0o600), convey.ShouldBeNil)

		t.Setenv(config.EnvConfigPath, "")
		t.Setenv("MARKERGEN_BASE_URL", srv.URL+"/v1")
		t.Setenv("MARKERGEN_API_KEY", "key")

		outPath := filepath.Join(dir, "out", "markers.txt")
		ctx := context.Background()

		convey.Convey("When the command runs for an existing fight", func() {
			metricsPath := filepath.Join(dir, "markergen.prom")
			logs, err := executeRoot(ctx,
				"--config", cfgPath,
				"--report", "abc",
				"--fight", "2",
				"--output", outPath,
				"--metrics-file", metricsPath,
			)

			convey.Convey("Then the document is written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(logs, convey.ShouldContainSubstring, "document written")
				convey.So(logs, convey.ShouldContainSubstring, "run_id=")

				data, readErr := os.ReadFile(outPath)
				convey.So(readErr, convey.ShouldBeNil)

				var doc types.Document
				convey.So(sonic.Unmarshal(data, &doc), convey.ShouldBeNil)
				convey.So(doc.FileType, convey.ShouldEqual, types.FileTypeCombined)
				convey.So(doc.Tracks, convey.ShouldHaveLength, 3)

				convey.So(doc.Tracks[0].Track, convey.ShouldEqual, -1)
				convey.So(doc.Tracks[0].Markers, convey.ShouldHaveLength, 1)
				convey.So(doc.Tracks[0].Markers[0].Time, convey.ShouldEqual, 19.0)
				convey.So(doc.Tracks[0].Markers[0].Description, convey.ShouldEqual, "not targetable")

				// The zero-length echo of the raidwide is dropped.
				convey.So(doc.Tracks[1].Track, convey.ShouldEqual, 0)
				convey.So(doc.Tracks[1].Markers, convey.ShouldHaveLength, 1)
				convey.So(doc.Tracks[1].Markers[0].Description, convey.ShouldEqual, "raid")
				convey.So(doc.Tracks[1].Markers[0].Time, convey.ShouldEqual, 5.0)
				convey.So(doc.Tracks[1].Markers[0].Duration, convey.ShouldEqual, 3.0)

				convey.So(doc.Tracks[2].Track, convey.ShouldEqual, 1)
				convey.So(doc.Tracks[2].Markers[0].Description, convey.ShouldEqual, "Fireball")
				convey.So(doc.Tracks[2].Markers[0].Time, convey.ShouldEqual, 10.0)
			})

			convey.Convey("Then metrics are exported", func() {
				data, readErr := os.ReadFile(metricsPath)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldContainSubstring, "markergen_pipeline_events_fetched_total")
				convey.So(string(data), convey.ShouldContainSubstring, "markergen_pipeline_tracks_assigned")
				convey.So(string(data), convey.ShouldContainSubstring, `report="abc"`)
				convey.So(string(data), convey.ShouldContainSubstring, `fight="2"`)
			})

			convey.Convey("Then the run's metrics start from zero", func() {
				data, readErr := os.ReadFile(metricsPath)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldContainSubstring,
					`markergen_pipeline_events_fetched_total{fight="2",report="abc",stream="casts"} 2`)
			})
		})

		convey.Convey("When the fight does not exist", func() {
			_, err := executeRoot(ctx, "--config", cfgPath, "--report", "abc", "--fight", "9", "--output", outPath)

			convey.Convey("Then the run fails and nothing is written", func() {
				convey.So(errors.Is(err, model.ErrFightNotFound), convey.ShouldBeTrue)
				_, statErr := os.Stat(outPath)
				convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the API key is missing", func() {
			t.Setenv("MARKERGEN_API_KEY", "")
			_, err := executeRoot(ctx, "--config", cfgPath, "--report", "abc", "--fight", "2", "--output", outPath)

			convey.Convey("Then config validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an argument is given", func() {
			_, err := executeRoot(ctx, "extra")

			convey.Convey("Then the command rejects it", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestApplyFlags(t *testing.T) {
	convey.Convey("Given a loaded config", t, func() {
		cfg := config.New()
		cfg.ReportID = "fromfile"
		cfg.FightID = 4

		convey.Convey("When only some flags are set", func() {
			cmd := newRootCmd()
			convey.So(cmd.ParseFlags([]string{"--fight", "0", "--log-level", "debug"}), convey.ShouldBeNil)
			f := &flags{fightID: 0, logLevel: "debug"}
			applyFlags(cmd, f, cfg)

			convey.Convey("Then set flags win, even when zero", func() {
				convey.So(cfg.FightID, convey.ShouldEqual, 0)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})

			convey.Convey("Then unset flags keep config values", func() {
				convey.So(cfg.ReportID, convey.ShouldEqual, "fromfile")
				convey.So(cfg.OutputFile, convey.ShouldEqual, "output.txt")
			})
		})
	})
}

func TestErrorType(t *testing.T) {
	convey.Convey("Given run errors", t, func() {
		convey.So(errorType(context.Canceled), convey.ShouldEqual, "canceled")
		convey.So(errorType(model.ErrFightNotFound), convey.ShouldEqual, "fight_not_found")
		convey.So(errorType(errors.New("boom")), convey.ShouldEqual, "other")
	})
}
