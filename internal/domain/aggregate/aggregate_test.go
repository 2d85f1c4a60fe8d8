package aggregate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/rcajudge/internal/domain/aggregate"
	. "github.com/smartystreets/goconvey/convey"
)

const miss = 21600.0

func TestDenseRank(t *testing.T) {
	Convey("Given three teams with a tie at the lowest cost", t, func() {
		turn := []aggregate.TeamCost{{"a", 10}, {"b", 10}, {"c", 20}}
		points := aggregate.DenseRank(turn, 10, miss)

		Convey("Then tied teams share the top points and the next drops by the group size", func() {
			So(points["a"], ShouldEqual, 10.0)
			So(points["b"], ShouldEqual, 10.0)
			So(points["c"], ShouldEqual, 8.0)
		})
	})

	Convey("Given unsorted distinct costs", t, func() {
		turn := []aggregate.TeamCost{{"slow", 300}, {"fast", 10}, {"mid", 60}}
		points := aggregate.DenseRank(turn, 10, miss)

		Convey("Then points should follow cost order", func() {
			So(points["fast"], ShouldEqual, 10.0)
			So(points["mid"], ShouldEqual, 9.0)
			So(points["slow"], ShouldEqual, 8.0)
		})

		Convey("And the input should not be reordered", func() {
			So(turn[0].TeamID, ShouldEqual, "slow")
		})
	})

	Convey("Given teams that never solved the fault", t, func() {
		turn := []aggregate.TeamCost{{"a", miss}, {"b", 50}, {"c", miss + 1}}
		points := aggregate.DenseRank(turn, 10, miss)

		Convey("Then they should receive zero", func() {
			So(points["b"], ShouldEqual, 10.0)
			So(points["a"], ShouldEqual, 0.0)
			So(points["c"], ShouldEqual, 0.0)
		})
	})

	Convey("Given more teams than points", t, func() {
		turn := []aggregate.TeamCost{{"a", 1}, {"b", 2}, {"c", 3}, {"d", 4}}
		points := aggregate.DenseRank(turn, 2, miss)

		Convey("Then teams past zero points should receive nothing", func() {
			So(points["a"], ShouldEqual, 2.0)
			So(points["b"], ShouldEqual, 1.0)
			So(points["c"], ShouldEqual, 0.0)
			So(points["d"], ShouldEqual, 0.0)
			So(len(points), ShouldEqual, 4)
		})
	})

	Convey("Given a tie group that straddles zero points", t, func() {
		turn := []aggregate.TeamCost{{"a", 1}, {"b", 2}, {"c", 2}, {"d", 2}}
		points := aggregate.DenseRank(turn, 2, miss)

		Convey("Then the whole group should still share its points", func() {
			So(points["b"], ShouldEqual, 1.0)
			So(points["c"], ShouldEqual, 1.0)
			So(points["d"], ShouldEqual, 1.0)
		})
	})

	Convey("Given no teams", t, func() {
		So(aggregate.DenseRank(nil, 10, miss), ShouldBeEmpty)
	})
}

func TestRankPoints(t *testing.T) {
	Convey("Given two faults and three teams", t, func() {
		in := aggregate.Input{
			Teams: []string{"a", "b", "c"},
			Scores: map[string][]float64{
				"a": {10, miss},
				"b": {10, 30},
				"c": {20, 20},
			},
		}
		p := aggregate.NewRankPoints(10, miss)

		Convey("When aggregating", func() {
			table, err := p.Aggregate(in)

			Convey("Then points should be summed per fault", func() {
				So(err, ShouldBeNil)
				So(table["a"], ShouldEqual, 10.0)
				So(table["b"], ShouldEqual, 19.0)
				So(table["c"], ShouldEqual, 18.0)
				So(p.HigherIsBetter(), ShouldBeTrue)
				So(p.Name(), ShouldEqual, aggregate.ModeRank)
			})
		})

		Convey("When a team has a different fault count", func() {
			in.Scores["c"] = []float64{20}
			table, err := p.Aggregate(in)

			Convey("Then the run should abort without a partial result", func() {
				So(errors.Is(err, aggregate.ErrSizeMismatch), ShouldBeTrue)
				So(table, ShouldBeNil)
			})
		})
	})

	Convey("Given zero faults", t, func() {
		in := aggregate.Input{Teams: []string{"a"}, Scores: map[string][]float64{"a": {}}}
		table, err := aggregate.NewRankPoints(0, 0).Aggregate(in)

		Convey("Then every team should score zero", func() {
			So(err, ShouldBeNil)
			So(table["a"], ShouldEqual, 0.0)
		})
	})
}

func TestMeanPolicies(t *testing.T) {
	Convey("Given per-fault costs", t, func() {
		in := aggregate.Input{
			Teams: []string{"a", "b"},
			Scores: map[string][]float64{
				"a": {10, 30},
				"b": {miss, 0},
			},
		}

		Convey("When averaging as f-score", func() {
			table, err := aggregate.MeanFScore{}.Aggregate(in)

			Convey("Then each team should get its mean cost", func() {
				So(err, ShouldBeNil)
				So(table["a"], ShouldEqual, 20.0)
				So(table["b"], ShouldEqual, miss/2)
				So(aggregate.MeanFScore{}.HigherIsBetter(), ShouldBeFalse)
			})
		})

		Convey("When averaging as grade", func() {
			table, err := aggregate.MeanGrade{}.Aggregate(in)

			Convey("Then the arithmetic should be the same", func() {
				So(err, ShouldBeNil)
				So(table["a"], ShouldEqual, 20.0)
				So(aggregate.MeanGrade{}.HigherIsBetter(), ShouldBeTrue)
			})
		})
	})

	Convey("Given zero faults", t, func() {
		in := aggregate.Input{Teams: []string{"a"}, Scores: map[string][]float64{"a": nil}}

		Convey("Then the mean should fail explicitly", func() {
			table, err := aggregate.MeanFScore{}.Aggregate(in)
			So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
			So(table, ShouldBeNil)

			_, err = aggregate.MeanGrade{}.Aggregate(in)
			So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
		})
	})

	Convey("Given the bare mean helper", t, func() {
		m, err := aggregate.Mean([]float64{1, 2, 3})
		So(err, ShouldBeNil)
		So(m, ShouldEqual, 2.0)

		m, err = aggregate.Mean(nil)
		So(errors.Is(err, aggregate.ErrEmptyInput), ShouldBeTrue)
		So(math.IsNaN(m), ShouldBeFalse)
	})
}

func TestForMode(t *testing.T) {
	Convey("Given the supported modes", t, func() {
		for _, mode := range []string{aggregate.ModeRank, aggregate.ModeFScore, aggregate.ModeGrade} {
			p, err := aggregate.ForMode(mode, 10, miss)
			So(err, ShouldBeNil)
			So(p.Name(), ShouldEqual, mode)
		}
	})

	Convey("Given an unknown mode", t, func() {
		p, err := aggregate.ForMode("median", 10, miss)
		So(p, ShouldBeNil)
		So(errors.Is(err, aggregate.ErrUnknownMode), ShouldBeTrue)
	})
}

func TestFaultCount(t *testing.T) {
	Convey("Given a roster team without scores", t, func() {
		in := aggregate.Input{Teams: []string{"a", "ghost"}, Scores: map[string][]float64{"a": {1}}}
		_, err := aggregate.FaultCount(in)
		So(errors.Is(err, aggregate.ErrSizeMismatch), ShouldBeTrue)
	})

	Convey("Given an empty roster", t, func() {
		n, err := aggregate.FaultCount(aggregate.Input{})
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 0)
	})
}
