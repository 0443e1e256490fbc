package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithRefreshInterval(time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it applies them and registers collectors", func() {
				So(m, ShouldNotBeNil)
				So(m.RefreshInterval(), ShouldEqual, time.Second)

				m.reportsGenerated.WithLabelValues("success").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_unit_reports_generated_total")
			})
		})

		Convey("Empty options keep the defaults", func() {
			m := NewManager(WithNamespace(""), WithRefreshInterval(0), WithPrometheusRegistry(registry))
			So(m.namespace, ShouldEqual, "gatecompass")
			So(m.refreshInterval, ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Report counters move", func() {
			before := counterValue(globalManager.reportsGenerated.WithLabelValues("success"))
			RecordReportGenerated("success")
			So(counterValue(globalManager.reportsGenerated.WithLabelValues("success")), ShouldEqual, before+1)

			UpdateTopicsRanked(7)
			var g dto.Metric
			So(globalManager.topicsRanked.Write(&g), ShouldBeNil)
			So(g.GetGauge().GetValue(), ShouldEqual, float64(7))
		})

		Convey("Nothing else panics", func() {
			So(func() {
				RecordReportFailed("data_unavailable")
				RecordReportLatency(12)
				RecordRecordsSkipped("file", 2)
				RecordStoreLoadLatency("postgres", 3)
				RecordStoreError("postgres")
				RecordCacheHit()
				RecordCacheMiss()
				RecordCacheError()
				RecordHTTPRequest("/report", "GET", "200")
				RecordHTTPRequestDuration("/report", "GET", "200", 4)
				RecordErrorByEndpoint("/report", "GET", "bad_request")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}
