package metrics_test

import (
	"testing"

	"github.com/venuelab/stagecraft/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording calculation metrics", func() {
			So(func() {
				metrics.RecordCalculation("coverageGrid")
				metrics.RecordCalculationError("catenary")
				metrics.RecordCalculationLatency("coverageGrid", 12.5)
				metrics.RecordGridPointsSampled(400)
			}, ShouldNotPanic)
		})

		Convey("When recording queue metrics", func() {
			So(func() {
				metrics.UpdateQueueSize(3)
				metrics.UpdateQueueCapacity(100)
				metrics.UpdateQueueUtilization(0.03)
				metrics.RecordQueueEnqueue()
				metrics.RecordQueueDequeue()
				metrics.RecordQueueEnqueueError()
			}, ShouldNotPanic)
		})

		Convey("When recording worker and store metrics", func() {
			So(func() {
				metrics.UpdateWorkerActiveCount(8)
				metrics.RecordWorkerProcessingLatency(4.2)
				metrics.RecordWorkerError()
				metrics.UpdateResultStoreSize(10)
				metrics.RecordResultStoreEviction()
			}, ShouldNotPanic)
		})

		Convey("When recording transport and system metrics", func() {
			So(func() {
				metrics.RecordHTTPRequest("calculations", "POST", "200")
				metrics.RecordHTTPRequestDuration("calculations", "POST", "200", 7.0)
				metrics.UpdateWebsocketSessions(2)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(42)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should be available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestNewManager(t *testing.T) {
	Convey("Given manager options", t, func() {
		Convey("When building a manager with a private registry", func() {
			m := metrics.NewManager(
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("engine"),
				metrics.WithHistogramBuckets([]float64{1, 10, 100}),
				metrics.WithPrometheusRegistry(nil), // ignored, keeps default
			)

			Convey("Then the manager should be constructed", func() {
				So(m, ShouldNotBeNil)
			})
		})
	})
}
