package seed

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chironhq/chiron/internal/domain/model"
)

func TestPickRandom(t *testing.T) {
	Convey("Given a pool of values", t, func() {
		pool := []string{"a", "b", "c", "d", "e"}

		Convey("When picking fewer entries than the pool holds", func() {
			picked := pickRandom(pool, 3)

			Convey("Then the picks are distinct pool members", func() {
				So(picked, ShouldHaveLength, 3)
				seen := make(map[string]struct{})
				for _, p := range picked {
					So(pool, ShouldContain, p)
					_, dup := seen[p]
					So(dup, ShouldBeFalse)
					seen[p] = struct{}{}
				}
			})
		})

		Convey("When picking more entries than the pool holds", func() {
			picked := pickRandom(pool, 10)

			Convey("Then the whole pool is returned", func() {
				So(picked, ShouldHaveLength, len(pool))
			})
		})
	})
}

func TestVerifyAssignment(t *testing.T) {
	ctx := context.Background()

	mentors := []model.Mentor{
		{ID: "mentor-a", MaxSessions: 1},
		{ID: "mentor-b", MaxSessions: 2},
	}

	Convey("Given a well formed assignment", t, func() {
		matches := []model.Match{
			{MatchID: "m1", MenteeID: "x", MentorID: "mentor-a", CompatibilityScore: 0.9, Cost: 0.1},
			{MatchID: "m2", MenteeID: "y", MentorID: "mentor-b", CompatibilityScore: 0.7, Cost: 0.3},
		}

		Convey("Then verification passes", func() {
			So(verifyAssignment(ctx, matches, mentors), ShouldBeNil)
		})
	})

	Convey("Given a mentee matched twice", t, func() {
		matches := []model.Match{
			{MatchID: "m1", MenteeID: "x", MentorID: "mentor-a", CompatibilityScore: 0.9, Cost: 0.1},
			{MatchID: "m2", MenteeID: "x", MentorID: "mentor-b", CompatibilityScore: 0.7, Cost: 0.3},
		}

		Convey("Then verification fails", func() {
			So(verifyAssignment(ctx, matches, mentors), ShouldNotBeNil)
		})
	})

	Convey("Given a mentor over its session cap", t, func() {
		matches := []model.Match{
			{MatchID: "m1", MenteeID: "x", MentorID: "mentor-a", CompatibilityScore: 0.9, Cost: 0.1},
			{MatchID: "m2", MenteeID: "y", MentorID: "mentor-a", CompatibilityScore: 0.7, Cost: 0.3},
		}

		Convey("Then verification fails", func() {
			So(verifyAssignment(ctx, matches, mentors), ShouldNotBeNil)
		})
	})

	Convey("Given a score outside the unit interval", t, func() {
		matches := []model.Match{
			{MatchID: "m1", MenteeID: "x", MentorID: "mentor-a", CompatibilityScore: 1.2, Cost: 0.1},
		}

		Convey("Then verification fails", func() {
			So(verifyAssignment(ctx, matches, mentors), ShouldNotBeNil)
		})
	})

	Convey("Given an empty assignment", t, func() {
		So(verifyAssignment(ctx, nil, mentors), ShouldBeNil)
	})
}
