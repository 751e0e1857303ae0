package scoring_test

import (
	"testing"

	"github.com/chironhq/chiron/internal/domain/model"
	scoring "github.com/chironhq/chiron/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewScorer(t *testing.T) {
	Convey("Given scorer construction", t, func() {
		Convey("When built with defaults", func() {
			s, err := scoring.NewScorer()

			So(err, ShouldBeNil)
			So(s, ShouldNotBeNil)
			So(s.MaxWorkload(), ShouldEqual, 5)
		})

		Convey("When the weight vector does not sum to 1", func() {
			_, err := scoring.NewScorer(scoring.WithWeights(scoring.Weights{
				Subject: 0.9, Experience: 0.9,
			}))

			So(err, ShouldNotBeNil)
		})

		Convey("When the strategy is unknown", func() {
			_, err := scoring.NewScorer(scoring.WithSubjectStrategy("cosine"))

			So(err, ShouldEqual, scoring.ErrUnknownStrategy)
		})
	})
}

func TestCompatibility(t *testing.T) {
	Convey("Given a default scorer", t, func() {
		scorer, err := scoring.NewScorer()
		So(err, ShouldBeNil)

		Convey("When mentee and mentor align on every factor", func() {
			mentee := model.Mentee{
				ID:             "mentee-1",
				Skills:         []string{"python", "ml"},
				Experience:     5,
				PreferredSlots: []string{"morning", "evening"},
				Timezone:       "Asia/Kolkata",
			}
			mentor := model.Mentor{
				ID:             "mentor-1",
				Skills:         []string{"python", "ml"},
				Experience:     5,
				AvailableSlots: []string{"morning", "evening"},
				Timezone:       "Asia/Kolkata",
				Workload:       0,
			}

			r := scorer.Compatibility(mentee, mentor)

			Convey("Then compatibility is effectively perfect", func() {
				So(r.Score, ShouldAlmostEqual, 1.0, 1e-9)
				So(r.MatchedSubject, ShouldEqual, "General")
			})
		})

		Convey("When the mentor is under-qualified", func() {
			mentee := model.Mentee{
				Skills:         []string{"python"},
				Experience:     8,
				PreferredSlots: []string{"morning"},
				Timezone:       "Asia/Kolkata",
			}
			mentor := model.Mentor{
				Skills:         []string{"python"},
				Experience:     3,
				AvailableSlots: []string{"morning"},
				Timezone:       "Asia/Kolkata",
				Workload:       0,
			}

			r := scorer.Compatibility(mentee, mentor)

			Convey("Then the experience term is zero but the rest still contribute", func() {
				// subject(=skill) 1.0*0.5 + experience 0*0.1 + availability
				// 1.0*0.2 + location 1.0*0.1 + workload 1.0*0.1
				So(r.Score, ShouldAlmostEqual, 0.9, 1e-9)
				So(r.Score, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When subject breakdowns carry real signal", func() {
			mentee := model.Mentee{
				Skills:           []string{"python"},
				SubjectBreakdown: []model.SubjectWeight{{Topic: "Mathematics", Weight: 0.8}},
				Experience:       2,
				PreferredHours:   4,
				Timezone:         "Europe/Berlin",
			}
			mentor := model.Mentor{
				Skills:           []string{"java"},
				SubjectBreakdown: []model.SubjectWeight{{Topic: "mathematics", Weight: 0.6}},
				Experience:       4,
				AvailableHours:   10,
				Timezone:         "Europe/Paris",
				Workload:         1,
			}

			r := scorer.Compatibility(mentee, mentor)

			Convey("Then the matched subject names the driving topic", func() {
				So(r.MatchedSubject, ShouldEqual, "mathematics")
				So(r.MatchedSubjectWeight, ShouldAlmostEqual, 0.7, 1e-12)
			})

			Convey("And the combined score stays in range", func() {
				So(r.Score, ShouldBeGreaterThan, 0)
				So(r.Score, ShouldBeLessThanOrEqualTo, 1)
			})
		})

		Convey("When the pair carries no usable fields at all", func() {
			r := scorer.Compatibility(model.Mentee{}, model.Mentor{})

			Convey("Then scoring degrades instead of failing", func() {
				So(r.Score, ShouldBeGreaterThanOrEqualTo, 0)
				So(r.Score, ShouldBeLessThanOrEqualTo, 1)
				So(r.MatchedSubject, ShouldEqual, "General")
			})
		})
	})

	Convey("Given a scorer with a custom weight vector", t, func() {
		scorer, err := scoring.NewScorer(
			scoring.WithWeights(scoring.Weights{Subject: 1.0}),
			scoring.WithMaxWorkload(3),
		)
		So(err, ShouldBeNil)

		Convey("When only the subject term carries weight", func() {
			mentee := model.Mentee{SubjectBreakdown: []model.SubjectWeight{{Topic: "go", Weight: 0.9}}}
			mentor := model.Mentor{SubjectBreakdown: []model.SubjectWeight{{Topic: "go", Weight: 0.7}}}

			r := scorer.Compatibility(mentee, mentor)

			Convey("Then the score equals the subject match alone", func() {
				So(r.Score, ShouldAlmostEqual, 0.8, 1e-12)
			})
		})
	})
}
