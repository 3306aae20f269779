package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/completeness/internal/adapters/catalog"
	app "github.com/okian/completeness/internal/app"
	"github.com/okian/completeness/internal/config"
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/pkg/logger"
)

func stellarCSV() string {
	header := []string{"kepid", "teff", "radius", "mass", "dataspan", "dutycycle"}
	header = append(header, catalog.CDPPColumns()...)
	header = append(header, catalog.MESThresholdColumns()...)

	var b strings.Builder
	b.WriteString(strings.Join(header, ",") + "\n")
	for _, star := range []string{"10,5700,1.0,1.0", "11,4800,0.8,0.8"} {
		row := []string{star, "1400.5", "0.88"}
		for range catalog.Durations {
			row = append(row, "60")
		}
		for range catalog.Durations {
			row = append(row, "7.1")
		}
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	return b.String()
}

const koiCSV = `kepid,kepoi_name,koi_pdisposition,koi_period,koi_prad
10,K00010.01,CANDIDATE,120,1.9
11,K00011.01,CANDIDATE,80,1.1
`

// archive serves the two tables the way the exoplanet archive does.
func archive() (*httptest.Server, *int) {
	hits := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Query().Get("table") {
		case catalog.StellarTable:
			fmt.Fprint(w, stellarCSV())
		case catalog.CandidateTable:
			fmt.Fprint(w, koiCSV)
		default:
			http.Error(w, "no such table", http.StatusBadRequest)
		}
	}))
	return srv, hits
}

func testConfig(archiveURL string) *config.Config {
	cfg := config.New()
	cfg.ArchiveURL = archiveURL
	cfg.CacheBackend = config.CacheNone
	cfg.FetchAttempts = 1
	cfg.WorkerCount = 2
	cfg.PeriodPoints = 6
	cfg.RadiusPoints = 4
	cfg.ParamPoints = 3
	return cfg
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then every option is built", func() {
			opts, err := serviceOptions(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(opts), convey.ShouldEqual, 9)
		})
	})

	convey.Convey("Given an unknown stellar parameter", t, func() {
		cfg := config.New()
		cfg.StellarParam = "logg"
		_, err := serviceOptions(cfg, logger.Nop())
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given an invalid detection CDF", t, func() {
		cfg := config.New()
		cfg.GammaShape = 0
		_, err := serviceOptions(cfg, logger.Nop())
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestNewFetcher(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an archive and a file cache", t, func() {
		srv, hits := archive()
		defer srv.Close()
		cfg := testConfig(srv.URL)
		cfg.CacheBackend = config.CacheFile
		cfg.CacheDir = t.TempDir()

		f, closeFetcher, err := newFetcher(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer closeFetcher()

		convey.Convey("Then the second fetch is served from disk", func() {
			t1, err := f.Fetch(ctx, catalog.CandidateTable)
			convey.So(err, convey.ShouldBeNil)
			t2, err := f.Fetch(ctx, catalog.CandidateTable)
			convey.So(err, convey.ShouldBeNil)
			convey.So(t2, convey.ShouldResemble, t1)
			convey.So(*hits, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given an archive and a redis cache", t, func() {
		srv, hits := archive()
		defer srv.Close()
		mr := miniredis.RunT(t)
		cfg := testConfig(srv.URL)
		cfg.CacheBackend = config.CacheRedis
		cfg.RedisAddr = mr.Addr()

		f, closeFetcher, err := newFetcher(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer closeFetcher()

		convey.Convey("Then the table is stored in redis", func() {
			_, err := f.Fetch(ctx, catalog.StellarTable)
			convey.So(err, convey.ShouldBeNil)
			_, err = f.Fetch(ctx, catalog.StellarTable)
			convey.So(err, convey.ShouldBeNil)
			convey.So(*hits, convey.ShouldEqual, 1)
			convey.So(len(mr.Keys()), convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given an unreachable redis", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.CacheBackend = config.CacheRedis
		cfg.RedisAddr = "127.0.0.1:1"

		convey.Convey("Then setup fails", func() {
			_, _, err := newFetcher(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestAnalysisEndToEnd(t *testing.T) {
	convey.Convey("Given an archive serving a small catalog", t, func() {
		srv, _ := archive()
		defer srv.Close()
		ctx := context.Background()
		cfg := testConfig(srv.URL)

		f, closeFetcher, err := newFetcher(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer closeFetcher()
		opts, err := serviceOptions(cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		svc, err := app.New(f, opts...)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the analysis runs", func() {
			res, err := svc.Run(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then both stars and candidates are used", func() {
				convey.So(len(res.Stars), convey.ShouldEqual, 2)
				convey.So(len(res.Detections), convey.ShouldEqual, 2)
				convey.So(res.Grid.Shape(), convey.ShouldResemble, [3]int{6, 4, 3})
			})

			convey.Convey("Then the summary can be produced", func() {
				convey.So(func() { summarize(ctx, logger.Nop(), svc, res) }, convey.ShouldNotPanic)
				mean, err := svc.Completeness([]int{grid.AxisPeriod, grid.AxisRadius, grid.AxisParam}, true)
				convey.So(err, convey.ShouldBeNil)
				convey.So(mean.Values[0], convey.ShouldBeGreaterThanOrEqualTo, 0)
			})

			convey.Convey("Then the API serves the result until cancelled", func() {
				sctx, cancel := context.WithCancel(ctx)
				done := make(chan error, 1)
				go func() { done <- serve(sctx, "127.0.0.1:0", svc, logger.Nop()) }()
				time.Sleep(50 * time.Millisecond)
				cancel()

				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("server did not stop")
				}
			})
		})
	})
}
