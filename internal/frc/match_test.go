package frc_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CarlColglazier/frc-elo/internal/frc"
)

func TestMatchHelpers(t *testing.T) {
	Convey("Given a three-robot match", t, func() {
		m := frc.Match{
			ID: "2016nccmp_qm12", CompLevel: frc.LevelQualification,
			RedScore: 60, BlueScore: 45,
			Red1: "frc1", Red2: "frc2", Red3: "frc3",
			Blue1: "frc4", Blue2: "frc5", Blue3: "frc6",
		}

		So(m.Red(), ShouldResemble, []string{"frc1", "frc2", "frc3"})
		So(m.Blue(), ShouldResemble, []string{"frc4", "frc5", "frc6"})
		So(m.ActualR(), ShouldEqual, 1.0)
		So(m.ActualB(), ShouldEqual, 0.0)
		So(m.ScoreMargin(), ShouldEqual, 15)
		So(m.Played(), ShouldBeTrue)

		Convey("A tie realizes as 0.5 for both sides", func() {
			m.BlueScore = 60
			So(m.ActualR(), ShouldEqual, 0.5)
			So(m.ActualB(), ShouldEqual, 0.5)
		})

		Convey("Two-robot alliances omit the empty slot", func() {
			m.Red3 = ""
			So(m.Red(), ShouldResemble, []string{"frc1", "frc2"})
		})

		Convey("An unplayed schedule slot is not Played", func() {
			m.RedScore = frc.ScoreUnplayed
			So(m.Played(), ShouldBeFalse)
		})
	})
}

func TestTeamNumber(t *testing.T) {
	cases := []struct {
		key  string
		want int
	}{
		{"frc254", 254},
		{"frc1", 1},
		{"frc0", 0},
		{"254", 0},
		{"frcx", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := frc.TeamNumber(tc.key); got != tc.want {
			t.Errorf("TeamNumber(%q) = %d, want %d", tc.key, got, tc.want)
		}
	}
}
