package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given metrics manager construction", t, func() {
		Convey("When created with defaults on a fresh registry", func() {
			m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it carries the chiron namespace and matching subsystem", func() {
				So(m.namespace, ShouldEqual, "chiron")
				So(m.subsystem, ShouldEqual, "matching")
				So(m.enabled, ShouldBeTrue)
			})

			Convey("And all core collectors are initialized", func() {
				So(m.matchesComputed, ShouldNotBeNil)
				So(m.matchOutcomes, ShouldNotBeNil)
				So(m.solverLatency, ShouldNotBeNil)
				So(m.compatibilityScores, ShouldNotBeNil)
				So(m.classifierCalls, ShouldNotBeNil)
				So(m.httpRequests, ShouldNotBeNil)
			})
		})

		Convey("When created with custom options", func() {
			m := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace("custom"),
				WithSubsystem("engine"),
			)

			Convey("Then options override the defaults", func() {
				So(m.namespace, ShouldEqual, "custom")
				So(m.subsystem, ShouldEqual, "engine")
			})
		})
	})
}

func TestPackageLevelRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording through package-level helpers", func() {
			Convey("Then the calls do not panic", func() {
				So(func() {
					RecordMatchComputed()
					RecordMatchOutcome("success")
					RecordMatchOutcome("offline")
					RecordSolverLatency(1.5)
					RecordCompatibilityScore(0.83)
					RecordClassifierCall()
					RecordClassifierError()
					RecordClassifierLatency(120)
					RecordCandidateSetRebuild()
					RecordCandidateCacheHit()
					RecordCandidateCacheMiss()
					UpdateStoreMentees(3)
					UpdateStoreMentors(5)
					UpdateStoreOnlineMentors(2)
					UpdateStoreMatches(1)
					RecordStoreUpdateLatency(0.2)
					UpdateQueueSize(10)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.1)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerActiveCount(4)
					RecordWorkerProcessingLatency(42)
					RecordWorkerError()
					RecordHTTPRequest("doubts", "POST", "200")
					RecordHTTPRequestDuration("doubts", "POST", "200", 3.4)
					RecordErrorByComponent("engine", "store_error")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When asking for the registry", func() {
			Convey("Then the custom registry is returned", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
