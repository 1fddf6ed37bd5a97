package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEventNormalization(t *testing.T) {
	Convey("Given raw event rows", t, func() {
		Convey("When a header carries trailing whitespace", func() {
			ev := normalize.Event(model.RemoteRecord{"Name": "E1", "Point ": "10"}, 0)

			Convey("Then the value is still found and coerced", func() {
				So(ev.Points, ShouldEqual, 10)
				So(ev.Name, ShouldEqual, "E1")
			})
		})

		Convey("When headers drift in casing", func() {
			ev := normalize.Event(model.RemoteRecord{"NAME": "Yoga", "CATEGORY": "health", "DATE": "2024-02-01"}, 0)

			Convey("Then the case-insensitive pass resolves them", func() {
				So(ev.Name, ShouldEqual, "Yoga")
				So(ev.Category, ShouldEqual, "health")
				So(ev.Date, ShouldEqual, "2024-02-01")
			})
		})

		Convey("When the misspelled category header is used", func() {
			ev := normalize.Event(model.RemoteRecord{"Catagory": "sport", "Category": "other"}, 0)

			Convey("Then the first candidate wins", func() {
				So(ev.Category, ShouldEqual, "sport")
			})
		})

		Convey("When an earlier candidate is blank", func() {
			ev := normalize.Event(model.RemoteRecord{"Point": "  ", "Points": 7.0}, 0)

			Convey("Then the next non-empty candidate is used", func() {
				So(ev.Points, ShouldEqual, 7)
			})
		})

		Convey("When optional columns are missing", func() {
			ev := normalize.Event(model.RemoteRecord{"Name": "Bare"}, 4)

			Convey("Then documented defaults apply", func() {
				So(ev.ID, ShouldEqual, "row-5")
				So(ev.Category, ShouldEqual, normalize.DefaultCategory)
				So(ev.Organizer, ShouldEqual, normalize.DefaultOrganizer)
				So(ev.Status, ShouldEqual, model.StatusActive)
				So(ev.Points, ShouldEqual, 0)
			})
		})

		Convey("When the status is written in mixed case", func() {
			active := normalize.Event(model.RemoteRecord{"Name": "Town Hall", "Status": "Active"}, 0)
			done := normalize.Event(model.RemoteRecord{"Name": "Retro", "Status": " COMPLETED "}, 1)

			Convey("Then it is folded to the lower-case value", func() {
				So(active.Status, ShouldEqual, model.StatusActive)
				So(active.Status.Available(), ShouldBeTrue)
				So(done.Status, ShouldEqual, model.StatusCompleted)
				So(done.Status.Available(), ShouldBeFalse)
			})
		})

		Convey("When points are fractional, negative or garbage", func() {
			So(normalize.Event(model.RemoteRecord{"Point": "2.5"}, 0).Points, ShouldEqual, 2)
			So(normalize.Event(model.RemoteRecord{"Point": "-4"}, 0).Points, ShouldEqual, 0)
			So(normalize.Event(model.RemoteRecord{"Point": "ten"}, 0).Points, ShouldEqual, 0)
			So(normalize.Event(model.RemoteRecord{"Point": json.Number("3")}, 0).Points, ShouldEqual, 3)
		})

		Convey("When the id is numeric", func() {
			ev := normalize.Event(model.RemoteRecord{"ID ": 17.0}, 0)

			Convey("Then it is rendered without a fraction", func() {
				So(ev.ID, ShouldEqual, "17")
			})
		})

		Convey("When a collection contains nil rows", func() {
			evs := normalize.Events([]model.RemoteRecord{nil, {"Name": "A"}})

			Convey("Then they are skipped", func() {
				So(len(evs), ShouldEqual, 1)
				So(evs[0].ID, ShouldEqual, "row-2")
			})
		})
	})
}

func TestUserNormalization(t *testing.T) {
	Convey("Given directory rows with localized headers", t, func() {
		u := normalize.User(model.RemoteRecord{
			"PS Code":      " ps001 ",
			"ชื่อ-นามสกุล": "Somchai",
			"ระดับ":        "Senior",
			"หน่วยงาน":     "Finance",
		})

		Convey("Then every field resolves", func() {
			So(u, ShouldResemble, model.User{PSCode: "ps001", Name: "Somchai", Position: "Senior", Department: "Finance"})
		})

		Convey("And English aliases resolve too", func() {
			u := normalize.User(model.RemoteRecord{"ps_code": "X1", "fullName": "Jane", "level": "L2", "unit": "Ops"})
			So(u, ShouldResemble, model.User{PSCode: "X1", Name: "Jane", Position: "L2", Department: "Ops"})
			So(len(normalize.Users([]model.RemoteRecord{nil})), ShouldEqual, 0)
		})
	})
}

func TestRecordNormalization(t *testing.T) {
	Convey("Given attendance rows", t, func() {
		recs := normalize.Records([]model.RemoteRecord{
			{"Name": "A", "Event": "E1", "Timestamp": "2024-01-02", "Points": "5", "Department": "HR"},
			{"name": "B", "event": "E2", "points": 2.5},
		})

		Convey("Then each row maps onto an attendance record", func() {
			So(len(recs), ShouldEqual, 2)
			So(recs[0].Name, ShouldEqual, "A")
			So(recs[0].Points, ShouldEqual, 5.0)
			So(recs[0].Department, ShouldEqual, "HR")
			So(recs[1].Event, ShouldEqual, "E2")
			So(recs[1].Points, ShouldEqual, 2.5)
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a custom table", t, func() {
		n := normalize.New(normalize.Table{"flag": {"Enabled"}})

		Convey("Then non-string values pass through", func() {
			v, ok := n.Lookup(model.RemoteRecord{"enabled": true}, "flag")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, true)
			So(n.String(model.RemoteRecord{"Enabled": false}, "flag", "x"), ShouldEqual, "false")
		})

		Convey("Then unknown fields and empty rows are absent", func() {
			_, ok := n.Lookup(model.RemoteRecord{"Enabled": "yes"}, "missing")
			So(ok, ShouldBeFalse)
			_, ok = n.Lookup(nil, "flag")
			So(ok, ShouldBeFalse)
		})
	})
}
