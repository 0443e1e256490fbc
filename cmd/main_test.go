package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/gatecompass/internal/config"
	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/okian/gatecompass/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WindowEndYear = 2024

		convey.Convey("When the service is built on the seed store", func() {
			svc, cleanup, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer cleanup()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := newMux(ctx, svc)

			convey.Convey("Then the report route serves the seeded corpus", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var rep types.Report
				convey.So(json.Unmarshal(w.Body.Bytes(), &rep), convey.ShouldBeNil)
				convey.So(rep.Status, convey.ShouldEqual, types.StatusSuccess)
				convey.So(rep.Window, convey.ShouldResemble, types.Window{StartYear: 2015, EndYear: 2024})
				convey.So(rep.TotalTopics, convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("And the landing page, docs and readiness routes are mounted", func() {
				for _, path := range []string{"/", "/api-docs", "/openapi.yaml", "/readyz", "/healthz"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("And stats name the store", func() {
				convey.So(svc.GetStats()["store"], convey.ShouldEqual, "seed")
			})
		})

		convey.Convey("When the cache URL is unusable", func() {
			cfg.CacheURL = "not-a-redis-url"
			svc, cleanup, err := buildService(ctx, cfg, logger.Nop())

			convey.Convey("Then the service runs without a cache", func() {
				convey.So(err, convey.ShouldBeNil)
				defer cleanup()
				convey.So(svc.GetStats()["cacheEnabled"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the file store points nowhere", func() {
			cfg.StoreKind = config.StoreFile
			cfg.CorpusPath = "/does/not/exist"
			cfg.EmptyOnUnavailable = true

			svc, cleanup, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer cleanup()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)

			convey.Convey("Then reports degrade instead of failing", func() {
				rep, err := svc.Report(ctx, 0, 0)
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Status, convey.ShouldEqual, types.StatusDegraded)
				convey.So(rep.TotalRecords, convey.ShouldEqual, 0)
			})

			convey.Convey("And readiness fails", func() {
				w := httptest.NewRecorder()
				newMux(ctx, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		convey.Convey("When the configured weights are invalid", func() {
			cfg.WeightMarks = 0.9

			_, _, err := buildService(ctx, cfg, logger.Nop())

			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRunRejectsBadConfig(t *testing.T) {
	convey.Convey("Given an empty listen address", t, func() {
		_ = os.Setenv("GATECOMPASS_ADDR", "")
		defer func() { _ = os.Unsetenv("GATECOMPASS_ADDR") }()

		convey.Convey("Then run fails before serving", func() {
			err := run(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "load config")
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the runtime metrics updater", t, func() {
		convey.Convey("Then a single refresh does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop exits when its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("metrics updater did not stop")
			}
		})
	})
}
