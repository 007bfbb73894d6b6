package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the collectors are registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.executorWorkers.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("dash"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.httpInFlight.Set(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_dash_http_requests_in_flight" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
						So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 2)
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording responder metrics", func() {
			before := testutil.ToFloat64(globalManager.responderConstructions.WithLabelValues("config", "ok"))
			RecordResponderConstruction("config", "ok")
			UpdateResponderPayloadBytes("config", 128)
			RecordResponderResult("/config", "ok")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.responderConstructions.WithLabelValues("config", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.responderPayloadBytes.WithLabelValues("config")), ShouldEqual, 128)
			})
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				IncHTTPInFlight()
				RecordHTTPRequest("config", "GET", "200")
				RecordHTTPRequestDuration("config", "GET", "200", 1.5)
				DecHTTPInFlight()
			}, ShouldNotPanic)
		})

		Convey("When recording executor metrics", func() {
			UpdateExecutorQueueCapacity(64)
			UpdateExecutorQueueSize(3)
			UpdateExecutorWorkers(4)
			RecordExecutorTask("submitted")
			RecordExecutorTaskLatency(2)

			Convey("Then gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.executorQueueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.executorQueueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.executorWorkers), ShouldEqual, 4)
			})
		})

		Convey("When recording error and system metrics", func() {
			So(func() {
				RecordErrorByComponent("executor", "queue_full")
				RecordErrorByEndpoint("overview", "GET", "server_error")
				RecordErrorByType("server_error", "high")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("When asking for the registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
