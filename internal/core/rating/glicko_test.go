package rating

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CarlColglazier/frc-elo/internal/frc"
)

func newTestGlicko() *Glicko {
	return NewGlicko(1, 25, 12, 400, "2017")
}

func TestGlickoHelpers(t *testing.T) {
	Convey("With the canonical Q = ln(10)/400", t, func() {
		gl := newTestGlicko()

		Convey("g(350) matches the paper formula", func() {
			// Cross-checked against g(300) = 0.7242 from Glickman's paper.
			So(gl.g(350), ShouldAlmostEqual, 0.66907, 0.0005)
		})

		Convey("Two fresh teams are a coin flip", func() {
			So(gl.e(0, 0, 350), ShouldAlmostEqual, 0.5, 1e-12)
			a := GlickoRating{Rating: 0, Deviation: 350}
			b := GlickoRating{Rating: 0, Deviation: 350}
			So(gl.PredictRating(a, b), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("A higher-rated alliance is favored", func() {
			a := GlickoRating{Rating: 100, Deviation: 80}
			b := GlickoRating{Rating: -50, Deviation: 90}
			So(gl.PredictRating(a, b), ShouldBeGreaterThan, 0.5)
		})

		Convey("Halving the divisor exaggerates the same gap", func() {
			sharp := NewGlicko(1, 25, 12, 200, "2017")
			a := GlickoRating{Rating: 100, Deviation: 80}
			b := GlickoRating{Rating: -50, Deviation: 90}
			So(sharp.PredictRating(a, b), ShouldBeGreaterThan, gl.PredictRating(a, b))
		})
	})
}

func TestGlickoStartEvent(t *testing.T) {
	Convey("Given a team that last played in week 1", t, func() {
		gl := newTestGlicko()
		team := gl.team("frc1")
		team.Deviation = 100
		team.lastWeek = 1

		Convey("When an event starts in week 5", func() {
			gl.StartEvent(5)

			Convey("Then the deviation grows by √(rd² + Δt·C²)", func() {
				// √(100² + 4·25²) = √12500
				So(team.Deviation, ShouldAlmostEqual, 111.8034, 0.001)
				So(team.lastWeek, ShouldEqual, 5)
			})

			Convey("And a second start in the same week is a no-op", func() {
				before := team.Deviation
				gl.StartEvent(5)
				So(team.Deviation, ShouldEqual, before)
			})
		})

		Convey("When the gap is enormous the deviation clamps at 350", func() {
			gl.StartEvent(500)
			So(team.Deviation, ShouldEqual, 350.0)
		})

		Convey("Deviation never decreases across starts", func() {
			for _, week := range []int{2, 3, 9, 20} {
				before := team.Deviation
				gl.StartEvent(week)
				So(team.Deviation, ShouldBeGreaterThanOrEqualTo, before)
			}
		})
	})
}

func TestGlickoEventBatching(t *testing.T) {
	red := [3]string{"frc1", "frc2", "frc3"}
	blue := [3]string{"frc4", "frc5", "frc6"}

	Convey("Given an event with two buffered matches", t, func() {
		gl := newTestGlicko()
		gl.StartEvent(1)
		gl.ProcessMatch(quals("2016test_qm1", red, blue, 60, 45))
		gl.ProcessMatch(quals("2016test_qm2", red, blue, 30, 50))

		Convey("Ratings do not move until the period closes", func() {
			So(gl.table["frc1"].Rating, ShouldEqual, glickoStartRating)
			So(len(gl.table["frc1"].results), ShouldEqual, 2)
		})

		Convey("SoftRating before equals the persisted value after", func() {
			soft := gl.SoftRating("frc1")
			gl.FinishEvent()

			So(gl.table["frc1"].Rating, ShouldAlmostEqual, soft.Rating, 1e-12)
			So(gl.table["frc1"].Deviation, ShouldAlmostEqual, soft.Deviation, 1e-12)
		})

		Convey("FinishEvent empties every buffer", func() {
			gl.FinishEvent()
			for _, key := range append(red[:], blue[:]...) {
				So(len(gl.table[key].results), ShouldEqual, 0)
				So(len(gl.table[key].opponents), ShouldEqual, 0)
			}
		})

		Convey("A winning period raises the rating and shrinks the deviation", func() {
			gl2 := newTestGlicko()
			gl2.ProcessMatch(quals("2016test_qm1", red, blue, 60, 45))
			gl2.ProcessMatch(quals("2016test_qm2", red, blue, 70, 10))
			gl2.FinishEvent()

			So(gl2.table["frc1"].Rating, ShouldBeGreaterThan, glickoStartRating)
			So(gl2.table["frc4"].Rating, ShouldBeLessThan, glickoStartRating)
			So(gl2.table["frc1"].Deviation, ShouldBeLessThan, glickoStartRD)
		})
	})

	Convey("The first playoff match flushes the qualification period", t, func() {
		gl := newTestGlicko()
		gl.ProcessMatch(quals("2016test_qm1", red, blue, 60, 45))

		m := quals("2016test_qf1m1", red, blue, 55, 40)
		m.CompLevel = frc.LevelQuarterfinal
		gl.ProcessMatch(m)

		// The qual result is applied; only the playoff match stays buffered.
		So(gl.table["frc1"].Rating, ShouldNotEqual, glickoStartRating)
		So(len(gl.table["frc1"].results), ShouldEqual, 1)
	})
}

func TestGlickoNewYear(t *testing.T) {
	Convey("Given a settled team", t, func() {
		gl := NewGlicko(1, 25, 12, 400, "2017")
		team := gl.team("frc1")
		team.Deviation = 90
		team.lastWeek = 8

		Convey("The off-season inflates the deviation by the gap weeks", func() {
			gl.NewYear()

			// √(90² + 12·25²) = √15600
			So(team.Deviation, ShouldAlmostEqual, 124.8999, 0.001)
			So(team.lastWeek, ShouldEqual, 0)
		})
	})
}

func TestGlickoOpponentSnapshots(t *testing.T) {
	Convey("Buffered opponent snapshots are copies, not references", t, func() {
		gl := newTestGlicko()
		red := [3]string{"frc1", "frc2", "frc3"}
		blue := [3]string{"frc4", "frc5", "frc6"}
		gl.ProcessMatch(quals("2016test_qm1", red, blue, 60, 45))

		snapshot := gl.table["frc1"].opponents[0]
		gl.table["frc4"].Rating = 999

		So(gl.table["frc1"].opponents[0].Rating, ShouldEqual, snapshot.Rating)
	})
}
