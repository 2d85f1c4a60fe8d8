package matching_test

import (
	"testing"

	"github.com/okian/rcajudge/internal/domain/matching"
	"github.com/okian/rcajudge/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sub(at float64, metrics ...string) model.Submission {
	ids := make([]model.Identifier, len(metrics))
	for i, m := range metrics {
		ids[i] = model.Identifier{Metric: m}
	}
	return model.Submission{At: at, Payload: ids}
}

func fault(at float64, metrics ...string) model.FaultEvent {
	ids := make([]model.Identifier, len(metrics))
	for i, m := range metrics {
		ids[i] = model.Identifier{Metric: m}
	}
	return model.FaultEvent{At: at, Candidates: model.NewIdentifierSet(ids...)}
}

func times(subs []model.Submission) []float64 {
	out := make([]float64, len(subs))
	for i, s := range subs {
		out[i] = s.At
	}
	return out
}

func TestMatcher_Find(t *testing.T) {
	Convey("Given submissions around a fault at t=100", t, func() {
		subs := []model.Submission{sub(150, "b"), sub(10, "a"), sub(700, "d"), sub(90, "x"), sub(400, "c")}
		m := matching.New(subs, matching.WithWindow(600))

		Convey("When finding with a generous quota", func() {
			step, w := m.Find(matching.NewWindow(24), 100)

			Convey("Then stale submissions should be skipped and charged", func() {
				So(step.Skipped, ShouldEqual, 2)
			})

			Convey("And every submission in [t, t+window] should be collected in order", func() {
				So(times(step.Submissions), ShouldResemble, []float64{150, 400, 700})
				So(step.Consumed, ShouldEqual, 3)
			})

			Convey("And quota and cursor should reflect all five examined submissions", func() {
				So(w.Quota, ShouldEqual, 19)
				So(w.Cursor, ShouldEqual, 5)
			})
		})

		Convey("When the collect mode is last", func() {
			lm := matching.New(subs, matching.WithWindow(600), matching.WithMode(matching.CollectLast))
			step, w := lm.Find(matching.NewWindow(24), 100)

			Convey("Then only the last in-window submission should be returned", func() {
				So(times(step.Submissions), ShouldResemble, []float64{700})
			})

			Convey("And every in-window submission should still be charged", func() {
				So(step.Consumed, ShouldEqual, 3)
				So(w.Quota, ShouldEqual, 19)
			})
		})

		Convey("When the quota runs out during advance", func() {
			step, w := m.Find(matching.NewWindow(1), 100)

			Convey("Then matching should stop without collecting", func() {
				So(step.Skipped, ShouldEqual, 1)
				So(step.Submissions, ShouldBeEmpty)
				So(w.Quota, ShouldEqual, 0)
				So(w.Cursor, ShouldEqual, 1)
			})
		})

		Convey("When the quota runs out during collection", func() {
			step, w := m.Find(matching.NewWindow(3), 100)

			Convey("Then collection should stop early", func() {
				So(times(step.Submissions), ShouldResemble, []float64{150})
				So(w.Quota, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a submission exactly at the window edge", t, func() {
		m := matching.New([]model.Submission{sub(600, "a"), sub(600.5, "b")}, matching.WithWindow(600))

		Convey("Then the inclusive upper bound should be honoured", func() {
			step, _ := m.Find(matching.NewWindow(24), 0)
			So(times(step.Submissions), ShouldResemble, []float64{600})
		})
	})

	Convey("Given an exhausted submission stream", t, func() {
		m := matching.New([]model.Submission{sub(5, "a")})
		_, w := m.Find(matching.NewWindow(24), 0)

		Convey("Then later faults should get no match", func() {
			step, w2 := m.Find(w, 1000)
			So(step.Submissions, ShouldBeEmpty)
			So(w2, ShouldResemble, w)
		})
	})
}

func TestMatcher_Skip(t *testing.T) {
	Convey("Given submissions before the competition start", t, func() {
		m := matching.New([]model.Submission{sub(1, "a"), sub(2, "b"), sub(50, "c")})

		Convey("When skipping to the start time", func() {
			w, n := m.Skip(matching.NewWindow(2), 10)

			Convey("Then no quota should be charged", func() {
				So(n, ShouldEqual, 2)
				So(w.Quota, ShouldEqual, 2)
				So(w.Cursor, ShouldEqual, 2)
			})
		})
	})
}

func TestMatcher_Run(t *testing.T) {
	faults := []model.FaultEvent{fault(0, "CPU_util_pct"), fault(1000, "Memory_free"), fault(2000, "User_Commit")}
	subs := []model.Submission{
		sub(5, "CPU_util_pct"),
		sub(500, "Disk_io"),
		sub(1010, "memory_free"),
		sub(1500, "noise"),
		sub(1600, "noise"),
		sub(2020, "User_Commit"),
	}

	Convey("Given a team answering three faults", t, func() {
		m := matching.New(subs, matching.WithWindow(600))

		Convey("When the quota covers every submission", func() {
			out := m.Run(faults, matching.NewWindow(24))

			Convey("Then each fault should get its in-window answers", func() {
				So(len(out.Results), ShouldEqual, 3)
				So(len(out.Results[0]), ShouldEqual, 2)
				So(out.Results[0][0].Correct, ShouldEqual, 1)
				So(out.Results[0][1].Correct, ShouldEqual, 0)
				So(out.Results[1][0].Offset, ShouldEqual, 10)
				So(out.Results[1][0].Correct, ShouldEqual, 1)
				So(out.Results[2][0].Correct, ShouldEqual, 1)
				So(out.Skipped, ShouldEqual, 0)
				So(out.Exhausted, ShouldEqual, -1)
			})
		})

		Convey("When the quota is small", func() {
			out := m.Run(faults, matching.NewWindow(3))

			Convey("Then it should not be replenished per fault", func() {
				So(len(out.Results[0]), ShouldEqual, 2)
				So(len(out.Results[1]), ShouldEqual, 1)
				So(out.Results[2], ShouldBeEmpty)
				So(out.Exhausted, ShouldEqual, 1)
				So(out.Window.Quota, ShouldEqual, 0)
			})
		})

		Convey("When the quota is zero from the start", func() {
			out := m.Run(faults, matching.NewWindow(0))

			Convey("Then no fault should receive a submission", func() {
				for _, r := range out.Results {
					So(r, ShouldBeEmpty)
				}
				So(out.Exhausted, ShouldEqual, 0)
				So(out.Window.Cursor, ShouldEqual, 0)
			})
		})

		Convey("When replaying with a fresh window", func() {
			first := m.Run(faults, matching.NewWindow(4))
			second := m.Run(faults, matching.NewWindow(4))

			Convey("Then the outcomes should be identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When stepping fault by fault", func() {
			w := matching.NewWindow(5)
			prev := w
			for _, f := range faults {
				_, w = m.Find(w, f.At)
				So(w.Quota, ShouldBeLessThanOrEqualTo, prev.Quota)
				So(w.Cursor, ShouldBeGreaterThanOrEqualTo, prev.Cursor)
				prev = w
			}
		})
	})

	Convey("Given unsorted input", t, func() {
		input := []model.Submission{sub(30, "b"), sub(10, "a")}
		m := matching.New(input)

		Convey("Then the caller's slice should be left untouched", func() {
			So(input[0].At, ShouldEqual, 30)
			So(m.Len(), ShouldEqual, 2)
		})
	})

	Convey("Given a negative quota", t, func() {
		So(matching.NewWindow(-3).Quota, ShouldEqual, 0)
		So(matching.NewWindow(-3).Exhausted(), ShouldBeTrue)
	})
}
