package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chironhq/chiron/internal/domain/model"
)

func TestMemStoreParticipants(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))

		Convey("Fetching an unknown mentee returns ErrNotFound", func() {
			_, err := s.Mentee(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Upserting a mentee without an id is rejected", func() {
			err := s.UpsertMentee(ctx, model.Mentee{})
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("A mentee round-trips through upsert and fetch", func() {
			in := model.Mentee{
				ID:         "mentee-1",
				Skills:     []string{"python", "ml"},
				Experience: 2,
				Status:     model.StatusActive,
			}
			So(s.UpsertMentee(ctx, in), ShouldBeNil)

			got, err := s.Mentee(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, in)
		})

		Convey("Upserting again replaces the prior record", func() {
			So(s.UpsertMentee(ctx, model.Mentee{ID: "mentee-1", Experience: 1}), ShouldBeNil)
			So(s.UpsertMentee(ctx, model.Mentee{ID: "mentee-1", Experience: 7}), ShouldBeNil)

			got, err := s.Mentee(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got.Experience, ShouldEqual, 7)
		})
	})

	Convey("Given a store with mentees in both statuses", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))
		So(s.UpsertMentee(ctx, model.Mentee{ID: "b", Status: model.StatusActive}), ShouldBeNil)
		So(s.UpsertMentee(ctx, model.Mentee{ID: "a", Status: model.StatusActive}), ShouldBeNil)
		So(s.UpsertMentee(ctx, model.Mentee{ID: "c", Status: model.StatusInactive}), ShouldBeNil)

		Convey("Mentees returns only active records sorted by id", func() {
			got, err := s.Mentees(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].ID, ShouldEqual, "a")
			So(got[1].ID, ShouldEqual, "b")
		})
	})
}

func TestMemStoreMentorFilters(t *testing.T) {
	ctx := context.Background()

	Convey("Given mentors with mixed online status", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))
		So(s.UpsertMentor(ctx, model.Mentor{ID: "m1", IsOnline: true, Status: model.StatusActive}), ShouldBeNil)
		So(s.UpsertMentor(ctx, model.Mentor{ID: "m2", IsOnline: false, Status: model.StatusActive}), ShouldBeNil)
		So(s.UpsertMentor(ctx, model.Mentor{ID: "m3", IsOnline: true, Status: model.StatusActive}), ShouldBeNil)
		So(s.UpsertMentor(ctx, model.Mentor{ID: "m4", IsOnline: true, Status: model.StatusInactive}), ShouldBeNil)

		Convey("An empty filter returns all active mentors in id order", func() {
			got, err := s.Mentors(ctx, MentorFilter{})
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(got[0].ID, ShouldEqual, "m1")
			So(got[1].ID, ShouldEqual, "m2")
			So(got[2].ID, ShouldEqual, "m3")
		})

		Convey("OnlineOnly drops offline mentors", func() {
			got, err := s.Mentors(ctx, MentorFilter{OnlineOnly: true})
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].ID, ShouldEqual, "m1")
			So(got[1].ID, ShouldEqual, "m3")
		})

		Convey("IDs restricts the scan, intersected with OnlineOnly", func() {
			got, err := s.Mentors(ctx, MentorFilter{OnlineOnly: true, IDs: []string{"m2", "m3"}})
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(got[0].ID, ShouldEqual, "m3")
		})

		Convey("IDs with no overlap yields an empty slice", func() {
			got, err := s.Mentors(ctx, MentorFilter{IDs: []string{"zz"}})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}

func TestMemStoreProfileUpdates(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored mentee and mentor", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))
		So(s.UpsertMentee(ctx, model.Mentee{ID: "mentee-1", Status: model.StatusActive}), ShouldBeNil)
		So(s.UpsertMentor(ctx, model.Mentor{ID: "mentor-1", Status: model.StatusActive}), ShouldBeNil)

		Convey("SetMenteeDoubt stores the latest doubt text", func() {
			So(s.SetMenteeDoubt(ctx, "mentee-1", "how do I tune a random forest"), ShouldBeNil)

			got, err := s.Mentee(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got.Doubt, ShouldEqual, "how do I tune a random forest")
		})

		Convey("SetMenteeSubjectBreakdown replaces the breakdown", func() {
			bd := []model.SubjectWeight{{Topic: "Machine Learning", Weight: 0.7}, {Topic: "Statistics", Weight: 0.3}}
			So(s.SetMenteeSubjectBreakdown(ctx, "mentee-1", bd), ShouldBeNil)

			got, err := s.Mentee(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got.SubjectBreakdown, ShouldResemble, bd)
		})

		Convey("SetMentorSubjectBreakdown replaces the breakdown", func() {
			bd := []model.SubjectWeight{{Topic: "Backend", Weight: 1.0}}
			So(s.SetMentorSubjectBreakdown(ctx, "mentor-1", bd), ShouldBeNil)

			got, err := s.Mentor(ctx, "mentor-1")
			So(err, ShouldBeNil)
			So(got.SubjectBreakdown, ShouldResemble, bd)
		})

		Convey("Profile setters on unknown ids return ErrNotFound", func() {
			So(errors.Is(s.SetMenteeDoubt(ctx, "nope", "x"), ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.SetMenteeSubjectBreakdown(ctx, "nope", nil), ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.SetMentorSubjectBreakdown(ctx, "nope", nil), ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemStoreWorkload(t *testing.T) {
	ctx := context.Background()

	Convey("Given a mentor with zero workload", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))
		So(s.UpsertMentor(ctx, model.Mentor{ID: "mentor-1", Status: model.StatusActive}), ShouldBeNil)

		Convey("Increments accumulate", func() {
			So(s.IncrementWorkload(ctx, "mentor-1", 1), ShouldBeNil)
			So(s.IncrementWorkload(ctx, "mentor-1", 2), ShouldBeNil)

			got, err := s.Mentor(ctx, "mentor-1")
			So(err, ShouldBeNil)
			So(got.Workload, ShouldEqual, 3)
		})

		Convey("A negative delta floors at zero", func() {
			So(s.IncrementWorkload(ctx, "mentor-1", -5), ShouldBeNil)

			got, err := s.Mentor(ctx, "mentor-1")
			So(err, ShouldBeNil)
			So(got.Workload, ShouldEqual, 0)
		})

		Convey("Unknown mentor returns ErrNotFound", func() {
			So(errors.Is(s.IncrementWorkload(ctx, "nope", 1), ErrNotFound), ShouldBeTrue)
		})

		Convey("Concurrent increments never lose an update", func() {
			const n = 64
			var wg sync.WaitGroup
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()
					_ = s.IncrementWorkload(ctx, "mentor-1", 1)
				}()
			}
			wg.Wait()

			got, err := s.Mentor(ctx, "mentor-1")
			So(err, ShouldBeNil)
			So(got.Workload, ShouldEqual, n)
		})
	})
}

func TestMemStoreMatches(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))

		Convey("Match for an unmatched mentee returns ErrNotFound", func() {
			_, err := s.Match(ctx, "mentee-1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("A match without a mentee id is rejected", func() {
			So(errors.Is(s.UpsertMatch(ctx, model.Match{}), ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("Upserting the same match twice leaves the record unchanged", func() {
			m := model.Match{
				MatchID:            "match-1",
				MenteeID:           "mentee-1",
				MentorID:           "mentor-1",
				CompatibilityScore: 0.82,
				Cost:               0.18,
				CreatedAt:          time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			}
			So(s.UpsertMatch(ctx, m), ShouldBeNil)
			So(s.UpsertMatch(ctx, m), ShouldBeNil)

			got, err := s.Match(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, m)
		})

		Convey("A re-match overwrites the prior match for that mentee", func() {
			So(s.UpsertMatch(ctx, model.Match{MenteeID: "mentee-1", MentorID: "mentor-1"}), ShouldBeNil)
			So(s.UpsertMatch(ctx, model.Match{MenteeID: "mentee-1", MentorID: "mentor-2"}), ShouldBeNil)

			got, err := s.Match(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got.MentorID, ShouldEqual, "mentor-2")
		})
	})
}

func TestMemStoreCandidateSets(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))

		Convey("CandidateSet for an unknown mentee returns ErrNotFound", func() {
			_, err := s.CandidateSet(ctx, "mentee-1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("A candidate set round-trips", func() {
			cs := model.CandidateSet{
				MenteeID: "mentee-1",
				Candidates: []model.Candidate{
					{MentorID: "mentor-2", CompatibilityScore: 0.9, IsOnline: false},
					{MentorID: "mentor-1", CompatibilityScore: 0.6, IsOnline: true},
				},
				CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			}
			So(s.UpsertCandidateSet(ctx, cs), ShouldBeNil)

			got, err := s.CandidateSet(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, cs)
		})

		Convey("A set without a mentee id is rejected", func() {
			So(errors.Is(s.UpsertCandidateSet(ctx, model.CandidateSet{}), ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

func TestMemStoreCounts(t *testing.T) {
	ctx := context.Background()

	Convey("Counts reflects store occupancy", t, func() {
		s := NewMemStore(WithMetricsEnabled(false))
		So(s.UpsertMentee(ctx, model.Mentee{ID: "a"}), ShouldBeNil)
		So(s.UpsertMentee(ctx, model.Mentee{ID: "b"}), ShouldBeNil)
		So(s.UpsertMentor(ctx, model.Mentor{ID: "m1", IsOnline: true}), ShouldBeNil)
		So(s.UpsertMentor(ctx, model.Mentor{ID: "m2"}), ShouldBeNil)
		So(s.UpsertMatch(ctx, model.Match{MenteeID: "a", MentorID: "m1"}), ShouldBeNil)

		So(s.Counts(ctx), ShouldResemble, Counts{
			Mentees:       2,
			Mentors:       2,
			OnlineMentors: 1,
			Matches:       1,
		})
	})
}
