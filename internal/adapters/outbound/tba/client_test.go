package tba

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClientConditionalGet(t *testing.T) {
	Convey("Given an upstream that honors If-Modified-Since", t, func() {
		var gotHeaders http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeaders = r.Header.Clone()
			if r.Header.Get("If-Modified-Since") == "Mon, 01 Feb 2016 00:00:00 GMT" {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("Last-Modified", "Mon, 01 Feb 2016 00:00:00 GMT")
			w.Write([]byte(`[{"key":"2016test"}]`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "test:app:0", "secret")

		Convey("An unconditional fetch returns the payload and timestamp", func() {
			resp, err := c.Get(context.Background(), "events/2016", "")
			So(err, ShouldBeNil)
			So(resp.OK(), ShouldBeTrue)
			So(resp.LastModified, ShouldEqual, "Mon, 01 Feb 2016 00:00:00 GMT")
			So(string(resp.Body), ShouldContainSubstring, "2016test")

			Convey("And sends the identification headers", func() {
				So(gotHeaders.Get("X-TBA-App-Id"), ShouldEqual, "test:app:0")
				So(gotHeaders.Get("X-TBA-Auth-Key"), ShouldEqual, "secret")
			})
		})

		Convey("A conditional fetch with the stored timestamp yields 304", func() {
			resp, err := c.Get(context.Background(), "events/2016", "Mon, 01 Feb 2016 00:00:00 GMT")
			So(err, ShouldBeNil)
			So(resp.NotModified(), ShouldBeTrue)
			So(len(resp.Body), ShouldEqual, 0)
		})
	})
}

func TestParsers(t *testing.T) {
	Convey("Events parse with week defaulting and official derivation", t, func() {
		body := []byte(`[
			{"key":"2016test","name":"Test","event_type":0,"start_date":"2016-03-03","week":2},
			{"key":"2016cmp","name":"Champs","event_type":4,"start_date":"2016-04-27","week":null},
			{"key":"2016off","name":"Offseason","event_type":99,"start_date":"2016-08-01","week":null}
		]`)
		events, err := ParseEvents(body)
		So(err, ShouldBeNil)
		So(len(events), ShouldEqual, 3)

		So(events[0].Event().Week, ShouldEqual, 2)
		So(events[1].Event().Week, ShouldEqual, 7)
		So(events[1].Event().Official, ShouldBeTrue)
		So(events[2].Event().Official, ShouldBeFalse)
	})

	Convey("Matches parse, short alliances are rejected", t, func() {
		body := []byte(`[
			{"key":"2016test_qm1","comp_level":"qm","match_number":1,"set_number":1,
			 "event_key":"2016test",
			 "alliances":{"red":{"score":60,"team_keys":["frc1","frc2","frc3"]},
			              "blue":{"score":45,"team_keys":["frc4","frc5"]}}},
			{"key":"2016test_qm2","comp_level":"qm","match_number":2,"set_number":1,
			 "event_key":"2016test",
			 "alliances":{"red":{"score":-1,"team_keys":["frc1"]},
			              "blue":{"score":-1,"team_keys":["frc4","frc5"]}}}
		]`)
		matches, err := ParseMatches(body)
		So(err, ShouldBeNil)
		So(len(matches), ShouldEqual, 2)

		m, ok := matches[0].Match()
		So(ok, ShouldBeTrue)
		So(m.Red(), ShouldResemble, []string{"frc1", "frc2", "frc3"})
		So(m.Blue(), ShouldResemble, []string{"frc4", "frc5"})
		So(m.ScoreMargin(), ShouldEqual, 15)

		_, ok = matches[1].Match()
		So(ok, ShouldBeFalse)
	})

	Convey("Rankings map to simulator snapshots", t, func() {
		body := []byte(`{"rankings":[
			{"team_key":"frc1","matches_played":10,"extra_stats":[6],"sort_orders":[2.4,180,40]},
			{"team_key":"frc2","matches_played":0,"extra_stats":[],"sort_orders":[]}
		]}`)
		ranks, err := ParseRankings(body)
		So(err, ShouldBeNil)

		So(ranks["frc1"].MatchesPlayed, ShouldEqual, 10)
		So(ranks["frc1"].ExtraPoints, ShouldEqual, 6)
		So(ranks["frc1"].SortOrder, ShouldEqual, 180)
		So(ranks["frc2"].MatchesPlayed, ShouldEqual, 0)
	})

	Convey("Malformed payloads surface a parse error", t, func() {
		_, err := ParseEvents([]byte(`{"not":"a list"}`))
		So(err, ShouldNotBeNil)
	})
}
