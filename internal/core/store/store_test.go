package store_test

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CarlColglazier/frc-elo/internal/core/store"
	"github.com/CarlColglazier/frc-elo/internal/frc"
)

func open(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreEvents(t *testing.T) {
	Convey("Given an archive with mixed events", t, func() {
		s := open(t)

		So(s.UpsertEvent(frc.Event{ID: "2016bb", Name: "B", EventType: 0, Official: true, StartDate: "2016-03-03", Week: 2}), ShouldBeNil)
		So(s.UpsertEvent(frc.Event{ID: "2016aa", Name: "A", EventType: 1, Official: true, StartDate: "2016-03-03", Week: 2}), ShouldBeNil)
		So(s.UpsertEvent(frc.Event{ID: "2016zz", Name: "Z", EventType: 0, Official: true, StartDate: "2016-03-10", Week: 3}), ShouldBeNil)
		So(s.UpsertEvent(frc.Event{ID: "2016off", Name: "Off", EventType: 99, Official: false, StartDate: "2016-02-01", Week: 1}), ShouldBeNil)

		Convey("TrainingEvents filters and orders", func() {
			events, err := s.TrainingEvents()
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 3)
			So(events[0].ID, ShouldEqual, "2016bb")
			So(events[1].ID, ShouldEqual, "2016aa")
			So(events[2].ID, ShouldEqual, "2016zz")
		})

		Convey("Upsert replaces by primary key", func() {
			So(s.UpsertEvent(frc.Event{ID: "2016aa", Name: "A2", EventType: 1, Official: true, StartDate: "2016-03-03", Week: 2}), ShouldBeNil)

			e, ok, err := s.Event("2016aa")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(e.Name, ShouldEqual, "A2")

			events, _ := s.TrainingEvents()
			So(len(events), ShouldEqual, 3)
		})

		Convey("A missing event reports not-found without error", func() {
			_, ok, err := s.Event("2016nope")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestStoreMatches(t *testing.T) {
	Convey("Given an event with a partially played schedule", t, func() {
		s := open(t)
		So(s.UpsertEvent(frc.Event{ID: "2016test", Official: true, StartDate: "2016-03-03", Week: 2}), ShouldBeNil)

		base := frc.Match{
			CompLevel: frc.LevelQualification, EventID: "2016test",
			Red1: "frc1", Red2: "frc2", Red3: "frc3",
			Blue1: "frc4", Blue2: "frc5", Blue3: "frc6",
		}

		m1 := base
		m1.ID, m1.MatchNumber, m1.RedScore, m1.BlueScore = "2016test_qm1", 1, 60, 45
		m2 := base
		m2.ID, m2.MatchNumber, m2.RedScore, m2.BlueScore = "2016test_qm2", 2, frc.ScoreUnplayed, frc.ScoreUnplayed
		mf := base
		mf.ID, mf.CompLevel, mf.MatchNumber, mf.RedScore, mf.BlueScore = "2016test_f1m1", frc.LevelFinal, 1, 70, 20
		mf.Red3 = "" // two-robot alliance round-trips through NULL

		for _, m := range []frc.Match{mf, m2, m1} {
			So(s.UpsertMatch(m), ShouldBeNil)
		}

		Convey("EventMatches drops unplayed and orders by level then number", func() {
			matches, err := s.EventMatches("2016test")
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 2)
			So(matches[0].ID, ShouldEqual, "2016test_qm1")
			So(matches[1].ID, ShouldEqual, "2016test_f1m1")
			So(matches[1].Red(), ShouldResemble, []string{"frc1", "frc2"})
		})

		Convey("Schedule keeps unplayed qualification slots", func() {
			schedule, err := s.Schedule("2016test")
			So(err, ShouldBeNil)
			So(len(schedule), ShouldEqual, 2)
			So(schedule[1].Played(), ShouldBeFalse)
		})

		Convey("Unplayed spans competition levels in replay order", func() {
			sf := base
			sf.ID, sf.CompLevel, sf.MatchNumber = "2016test_sf1m1", frc.LevelSemifinal, 1
			sf.RedScore, sf.BlueScore = frc.ScoreUnplayed, frc.ScoreUnplayed
			So(s.UpsertMatch(sf), ShouldBeNil)

			unplayed, err := s.Unplayed("2016test")
			So(err, ShouldBeNil)
			So(len(unplayed), ShouldEqual, 2)
			So(unplayed[0].ID, ShouldEqual, "2016test_qm2")
			So(unplayed[1].ID, ShouldEqual, "2016test_sf1m1")
		})

		Convey("Re-upserting a match with scores replaces the row", func() {
			m2.RedScore, m2.BlueScore = 33, 44
			So(s.UpsertMatch(m2), ShouldBeNil)

			matches, _ := s.EventMatches("2016test")
			So(len(matches), ShouldEqual, 3)
		})
	})
}
