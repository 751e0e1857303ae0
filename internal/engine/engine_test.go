package engine

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chironhq/chiron/internal/adapters/classifier"
	"github.com/chironhq/chiron/internal/adapters/repository"
	"github.com/chironhq/chiron/internal/domain/model"
)

// newTestEngine starts an engine over a metrics-silent in-memory store.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, repository.Store) {
	t.Helper()

	store := repository.NewMemStore(repository.WithMetricsEnabled(false))
	opts = append([]Option{WithStore(store), WithWorkerCount(1)}, opts...)
	e := New(opts...)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(e.Stop)
	return e, store
}

func testMentee(id string, skills ...string) model.Mentee {
	return model.Mentee{
		ID:             id,
		Skills:         skills,
		Experience:     2,
		PreferredHours: 5,
		Timezone:       "Asia/Kolkata",
		Status:         model.StatusActive,
	}
}

func testMentor(id string, online bool, skills ...string) model.Mentor {
	return model.Mentor{
		ID:             id,
		Skills:         skills,
		Experience:     5,
		AvailableHours: 10,
		Timezone:       "Asia/Kolkata",
		IsOnline:       online,
		Status:         model.StatusActive,
	}
}

func TestEngineCompatibility(t *testing.T) {
	ctx := context.Background()

	Convey("Given a mentee and a mentor", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-1", true, "python")), ShouldBeNil)

		Convey("A well-aligned pair scores high", func() {
			result, err := e.Compatibility(ctx, "mentee-1", "mentor-1")
			So(err, ShouldBeNil)
			So(result.Score, ShouldAlmostEqual, 0.97, 0.0001)
		})

		Convey("Unknown participants surface ErrNotFound", func() {
			_, err := e.Compatibility(ctx, "nope", "mentor-1")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = e.Compatibility(ctx, "mentee-1", "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestEngineMatchBulk(t *testing.T) {
	ctx := context.Background()

	Convey("Given two mentees and two online mentors", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-x", "python")), ShouldBeNil)
		So(store.UpsertMentee(ctx, testMentee("mentee-y", "python", "java")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-a", true, "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-b", true, "java")), ShouldBeNil)

		Convey("Bulk matching pairs each mentee with a distinct mentor", func() {
			matches, err := e.MatchBulk(ctx)
			So(err, ShouldBeNil)
			So(matches, ShouldHaveLength, 2)

			byMentee := make(map[string]string)
			for _, m := range matches {
				byMentee[m.MenteeID] = m.MentorID
			}
			// mentee-x only aligns with mentor-a, pushing mentee-y to b.
			So(byMentee["mentee-x"], ShouldEqual, "mentor-a")
			So(byMentee["mentee-y"], ShouldEqual, "mentor-b")
		})

		Convey("Matched mentors get their workload bumped", func() {
			_, err := e.MatchBulk(ctx)
			So(err, ShouldBeNil)

			a, err := store.Mentor(ctx, "mentor-a")
			So(err, ShouldBeNil)
			So(a.Workload, ShouldEqual, 1)
		})

		Convey("Matches are persisted per mentee", func() {
			_, err := e.MatchBulk(ctx)
			So(err, ShouldBeNil)

			m, err := e.Match(ctx, "mentee-x")
			So(err, ShouldBeNil)
			So(m.MentorID, ShouldEqual, "mentor-a")
			So(m.CompatibilityScore, ShouldAlmostEqual, 1.0-m.Cost, 0.0001)
		})
	})

	Convey("Given more mentees than online mentors", t, func() {
		e, store := newTestEngine(t)
		for _, id := range []string{"mentee-1", "mentee-2", "mentee-3"} {
			So(store.UpsertMentee(ctx, testMentee(id, "python")), ShouldBeNil)
		}
		So(store.UpsertMentor(ctx, testMentor("mentor-a", true, "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-b", true, "python")), ShouldBeNil)

		Convey("Only as many matches as mentors are produced", func() {
			matches, err := e.MatchBulk(ctx)
			So(err, ShouldBeNil)
			So(matches, ShouldHaveLength, 2)

			mentors := make(map[string]bool)
			for _, m := range matches {
				So(mentors[m.MentorID], ShouldBeFalse)
				mentors[m.MentorID] = true
			}
		})
	})

	Convey("Given no participants", t, func() {
		e, _ := newTestEngine(t)

		Convey("Bulk matching returns no matches without error", func() {
			matches, err := e.MatchBulk(ctx)
			So(err, ShouldBeNil)
			So(matches, ShouldBeEmpty)
		})
	})

	Convey("Given mentees but no online mentors", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-a", false, "python")), ShouldBeNil)

		Convey("Bulk matching produces no matches", func() {
			matches, err := e.MatchBulk(ctx)
			So(err, ShouldBeNil)
			So(matches, ShouldBeEmpty)
		})
	})
}

func TestEngineMatchOne(t *testing.T) {
	ctx := context.Background()

	Convey("Given one mentee and two online mentors", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-a", true, "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-b", true, "java")), ShouldBeNil)

		Convey("The best aligned mentor wins", func() {
			outcome, err := e.MatchOne(ctx, "mentee-1", nil)
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, model.OutcomeSuccess)
			So(outcome.Match, ShouldNotBeNil)
			So(outcome.Match.MentorID, ShouldEqual, "mentor-a")

			mentor, err := store.Mentor(ctx, "mentor-a")
			So(err, ShouldBeNil)
			So(mentor.Workload, ShouldEqual, 1)
		})

		Convey("A restriction narrows the pool", func() {
			outcome, err := e.MatchOne(ctx, "mentee-1", []string{"mentor-b"})
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, model.OutcomeSuccess)
			So(outcome.Match.MentorID, ShouldEqual, "mentor-b")
		})

		Convey("An unknown mentee surfaces ErrNotFound", func() {
			_, err := e.MatchOne(ctx, "nope", nil)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given only offline mentors", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-a", false, "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-b", false, "python", "java")), ShouldBeNil)

		Convey("The outcome falls back to offline candidates", func() {
			outcome, err := e.MatchOne(ctx, "mentee-1", nil)
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, model.OutcomeOffline)
			So(outcome.Match, ShouldBeNil)
			So(outcome.Candidates, ShouldNotBeEmpty)
			So(outcome.Candidates[0].MentorID, ShouldEqual, "mentor-a")

			Convey("And nothing was written as a match", func() {
				_, err := e.Match(ctx, "mentee-1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And no workload changed", func() {
				mentor, err := store.Mentor(ctx, "mentor-a")
				So(err, ShouldBeNil)
				So(mentor.Workload, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a mentee with no mentors at all", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)

		Convey("The outcome is no_match", func() {
			outcome, err := e.MatchOne(ctx, "mentee-1", nil)
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, model.OutcomeNoMatch)
			So(outcome.Match, ShouldBeNil)
			So(outcome.Candidates, ShouldBeEmpty)
		})
	})

	Convey("Given a mentor at its session cap", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		full := testMentor("mentor-a", true, "python")
		full.Workload = 3
		full.MaxSessions = 3
		So(store.UpsertMentor(ctx, full), ShouldBeNil)

		Convey("The capped mentor is excluded from the pool", func() {
			outcome, err := e.MatchOne(ctx, "mentee-1", nil)
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldNotEqual, model.OutcomeSuccess)
		})
	})
}

func TestEngineOfflineCandidates(t *testing.T) {
	ctx := context.Background()

	Convey("Given a mix of online and offline mentors", t, func() {
		e, store := newTestEngine(t, WithOfflineCandidateLimit(2))
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-on", true, "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-off-1", false, "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-off-2", false, "python", "java")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-off-3", false, "python", "java", "go")), ShouldBeNil)

		Convey("Only offline mentors are returned, best first, capped", func() {
			candidates, err := e.OfflineCandidates(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(candidates, ShouldHaveLength, 2)
			So(candidates[0].MentorID, ShouldEqual, "mentor-off-1")
			So(candidates[0].CompatibilityScore, ShouldBeGreaterThanOrEqualTo, candidates[1].CompatibilityScore)
			for _, c := range candidates {
				So(c.IsOnline, ShouldBeFalse)
			}
		})

		Convey("A repeat call is served from the cache", func() {
			first, err := e.OfflineCandidates(ctx, "mentee-1")
			So(err, ShouldBeNil)
			second, err := e.OfflineCandidates(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})

		Convey("An unknown mentee surfaces ErrNotFound", func() {
			_, err := e.OfflineCandidates(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestEngineRecordMatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine", t, func() {
		e, _ := newTestEngine(t)

		Convey("Recording fills in id and timestamp", func() {
			So(e.RecordMatch(ctx, model.Match{MenteeID: "mentee-1", MentorID: "mentor-1", CompatibilityScore: 0.8}), ShouldBeNil)

			got, err := e.Match(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(got.MatchID, ShouldNotBeEmpty)
			So(got.CreatedAt.IsZero(), ShouldBeFalse)
		})

		Convey("Recording the same match twice leaves the record unchanged", func() {
			m := model.Match{MatchID: "match-1", MenteeID: "mentee-1", MentorID: "mentor-1", CompatibilityScore: 0.8}
			So(e.RecordMatch(ctx, m), ShouldBeNil)
			first, err := e.Match(ctx, "mentee-1")
			So(err, ShouldBeNil)

			So(e.RecordMatch(ctx, first), ShouldBeNil)
			second, err := e.Match(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})

		Convey("A match without ids is rejected", func() {
			err := e.RecordMatch(ctx, model.Match{MenteeID: "mentee-1"})
			So(errors.Is(err, repository.ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

func TestEngineSubmitDoubt(t *testing.T) {
	ctx := context.Background()

	Convey("Given a mentee and a subject-aligned mentor", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		mentor := testMentor("mentor-a", true, "python")
		mentor.SubjectBreakdown = []model.SubjectWeight{{Topic: "Mathematics", Weight: 1.0}}
		So(store.UpsertMentor(ctx, mentor), ShouldBeNil)

		Convey("A doubt is stored, classified and matched", func() {
			outcome, err := e.SubmitDoubt(ctx, "mentee-1", "I am stuck on a calculus problem")
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, model.OutcomeSuccess)
			So(outcome.Match.MatchedSubject, ShouldEqual, "Mathematics")

			mentee, err := store.Mentee(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(mentee.Doubt, ShouldEqual, "I am stuck on a calculus problem")
			So(mentee.SubjectBreakdown, ShouldResemble, []model.SubjectWeight{{Topic: "Mathematics", Weight: 1.0}})
		})

		Convey("An unknown mentee surfaces ErrNotFound", func() {
			_, err := e.SubmitDoubt(ctx, "nope", "anything")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a classifier that always fails", t, func() {
		e, store := newTestEngine(t, WithClassifier(failingClassifier{}))
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-a", true, "python")), ShouldBeNil)

		Convey("The mentee falls back to the general breakdown and still matches", func() {
			outcome, err := e.SubmitDoubt(ctx, "mentee-1", "something unusual")
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, model.OutcomeSuccess)

			mentee, err := store.Mentee(ctx, "mentee-1")
			So(err, ShouldBeNil)
			So(mentee.SubjectBreakdown, ShouldResemble, classifier.GeneralBreakdown())
		})
	})
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) ([]model.SubjectWeight, error) {
	return nil, errors.New("backend down")
}

func TestEngineProfileEvents(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running engine", t, func() {
		e, _ := newTestEngine(t)

		Convey("Profile events are accepted until the queue fills", func() {
			So(e.EnqueueProfileEvent(ctx, model.ProfileEvent{EventID: "evt-1", MentorID: "mentor-1"}), ShouldBeTrue)
		})

		Convey("Duplicate request ids are detected", func() {
			So(e.SeenAndRecord(ctx, "doubt-1"), ShouldBeFalse)
			So(e.SeenAndRecord(ctx, "doubt-1"), ShouldBeTrue)
			e.Unrecord(ctx, "doubt-1")
			So(e.SeenAndRecord(ctx, "doubt-1"), ShouldBeFalse)
		})
	})
}

func TestEngineStats(t *testing.T) {
	ctx := context.Background()

	Convey("Stats reflects store and pipeline occupancy", t, func() {
		e, store := newTestEngine(t)
		So(store.UpsertMentee(ctx, testMentee("mentee-1", "python")), ShouldBeNil)
		So(store.UpsertMentor(ctx, testMentor("mentor-a", true, "python")), ShouldBeNil)

		stats := e.Stats(ctx)
		So(stats["mentees"], ShouldEqual, 1)
		So(stats["mentors"], ShouldEqual, 1)
		So(stats["online_mentors"], ShouldEqual, 1)
		So(stats["matches"], ShouldEqual, 0)
	})
}
