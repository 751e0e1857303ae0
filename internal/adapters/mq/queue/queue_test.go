package queue

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded in-memory queue", t, func() {
		q := NewInMemoryQueue(WithCapacity(2), WithMetricsEnabled(false))

		Convey("Events round-trip through enqueue and dequeue", func() {
			e := Event{EventID: "evt-1", MentorID: "mentor-1", JobRole: "Data Engineer"}
			So(q.Enqueue(ctx, e), ShouldBeTrue)

			select {
			case got := <-q.Dequeue(ctx):
				So(got, ShouldResemble, e)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for dequeue")
			}
		})

		Convey("Enqueue reports false when the queue is full", func() {
			So(q.Enqueue(ctx, Event{EventID: "evt-1", MentorID: "m"}), ShouldBeTrue)
			So(q.Enqueue(ctx, Event{EventID: "evt-2", MentorID: "m"}), ShouldBeTrue)
			So(q.Enqueue(ctx, Event{EventID: "evt-3", MentorID: "m"}), ShouldBeFalse)
			So(q.Len(ctx), ShouldEqual, 2)
		})

		Convey("Enqueue after close is rejected", func() {
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, Event{EventID: "evt-1", MentorID: "m"}), ShouldBeFalse)
		})

		Convey("Close is idempotent", func() {
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
		})

		Convey("Closing drains queued events then closes the dequeue channel", func() {
			So(q.Enqueue(ctx, Event{EventID: "evt-1", MentorID: "m"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			ch := q.Dequeue(ctx)
			select {
			case got, ok := <-ch:
				So(ok, ShouldBeTrue)
				So(got.EventID, ShouldEqual, "evt-1")
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for drained event")
			}
			select {
			case _, ok := <-ch:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for channel close")
			}
		})

		Convey("A cancelled context stops the dequeue goroutine", func() {
			cctx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(cctx)
			cancel()
			So(q.Enqueue(ctx, Event{EventID: "evt-1", MentorID: "m"}), ShouldBeTrue)

			// Give the goroutine time to observe the cancellation while
			// nothing reads from the channel.
			time.Sleep(50 * time.Millisecond)

			select {
			case _, ok := <-ch:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for channel close")
			}
		})
	})
}
