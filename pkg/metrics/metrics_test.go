package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every collector is registered on it", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.eventsReceived.Inc()

			Convey("Then metric names use the namespace", func() {
				n, err := testutil.GatherAndCount(registry, "test_processor_events_received_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording intake outcomes", func() {
			before := testutil.ToFloat64(globalManager.eventsSkipped.WithLabelValues("filter_mismatch"))
			RecordEventReceived()
			RecordEventSkipped("filter_mismatch")
			RecordEventProcessed("success")
			RecordProcessingLatency(12)

			Convey("Then the labelled counters move", func() {
				after := testutil.ToFloat64(globalManager.eventsSkipped.WithLabelValues("filter_mismatch"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording pipeline stages", func() {
			before := testutil.ToFloat64(globalManager.actionsPlayed)
			So(func() {
				RecordWinnerResolutionLatency(40)
				RecordPlayerCreated()
				RecordPlayerExisting()
				RecordActionPlayed()
			}, ShouldNotPanic)

			Convey("Then the action counter increments", func() {
				So(testutil.ToFloat64(globalManager.actionsPlayed)-before, ShouldEqual, 1)
			})
		})

		Convey("When recording outbound calls and tokens", func() {
			So(func() {
				RecordExternalRequest("platform", "list_submissions", "200", 25)
				RecordExternalRequest("playoff", "player_exists", "409", 30)
				RecordTokenRefresh("m2m")
				RecordTokenError("playoff")
			}, ShouldNotPanic)
		})

		Convey("When recording consumer state", func() {
			UpdateConsumerUp(true)
			So(testutil.ToFloat64(globalManager.consumerUp), ShouldEqual, 1)
			UpdateConsumerUp(false)
			So(testutil.ToFloat64(globalManager.consumerUp), ShouldEqual, 0)
			So(func() {
				RecordOffsetCommit()
				RecordCommitError()
				RecordFetchError()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("healthz", "GET", "200")
				RecordHTTPRequestDuration("healthz", "GET", "200", 5.0)
				RecordErrorByComponent("intake", "parse_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
		})

		Convey("When getting the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, customRegistry)

			Convey("Then every metric carries the service label", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, mf := range families {
					for _, m := range mf.GetMetric() {
						var service string
						for _, lp := range m.GetLabel() {
							if lp.GetName() == "service" {
								service = lp.GetValue()
							}
						}
						So(service, ShouldEqual, ServiceName)
					}
				}
			})
		})
	})
}
