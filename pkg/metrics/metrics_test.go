package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func find(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.submissions.WithLabelValues(OutcomeSuccess).Inc()

			Convey("Then metrics are registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				f := find(families, "test_unit_submissions_total")
				So(f, ShouldNotBeNil)
				So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1.0)

				var env string
				for _, lp := range f.GetMetric()[0].GetLabel() {
					if lp.GetName() == "env" {
						env = lp.GetValue()
					}
				}
				So(env, ShouldEqual, "test")
			})
		})

		Convey("When buckets are unordered with repeats", func() {
			manager := NewManager(
				WithHistogramBuckets([]float64{100, 5, 100, 20}),
				WithNamespace("  "),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then they are sorted and compacted and blank names are ignored", func() {
				So(manager.histogramBuckets, ShouldResemble, []float64{5, 20, 100})
				So(manager.namespace, ShouldEqual, "tally")
			})
		})

		Convey("When two managers share one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When every recorder is called", func() {
			So(func() {
				RecordBridgeRequest("getEvents", OutcomeSuccess, 12)
				RecordBridgeRequest("getUsers", OutcomeTimeout, 15000)
				UpdateBridgePending(2)
				RecordBridgeLateDelivery()
				UpdateCollectionSize("events", SourceRemote, 3)
				RecordCacheFallback("users")
				RecordCacheError("events", "write")
				RecordRefreshDuration(40)
				RecordSubmission(OutcomeDuplicate)
				RecordEventWrite("create", OutcomeSuccess)
				RecordSummaryBuild(1.5, 7)
				RecordHTTPRequest("/summary", "GET", "200")
				RecordHTTPRequestDuration("/summary", "GET", "200", 0.01)
				RecordErrorByComponent("bridge", "timeout")
				RecordErrorByType("timeout", "medium")
				RecordErrorByEndpoint("/summary", "GET", "timeout")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
				UpdateDedupeEntries(4)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(find(families, "tally_attendance_bridge_requests_total"), ShouldNotBeNil)
				So(find(families, "tally_attendance_collection_size"), ShouldNotBeNil)
				So(find(families, "tally_attendance_system_goroutines"), ShouldNotBeNil)

				g := find(families, "tally_attendance_summary_participants")
				So(g, ShouldNotBeNil)
				So(g.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 7.0)
			})
		})
	})
}
