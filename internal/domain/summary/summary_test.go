package summary_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/normalize"
	"github.com/okian/tally/internal/domain/summary"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildEndToEnd(t *testing.T) {
	Convey("Given raw rows as the backend returns them", t, func() {
		records := normalize.Records([]model.RemoteRecord{
			{"Name": "A", "Event": "E1", "Timestamp": "2024-01-02"},
			{"Name": "A", "Event": "E1", "Timestamp": "2024-01-01"},
		})
		events := normalize.Events([]model.RemoteRecord{
			{"Name": "E1", "Point": "5", "Date": "2024-01-02"},
		})

		Convey("When the summary is built", func() {
			out := summary.Build(records, events, summary.Options{})

			Convey("Then one participant carries both attendances", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].Name, ShouldEqual, "A")
				So(out[0].AttendanceCount, ShouldEqual, 2)
				So(out[0].TotalPoints, ShouldEqual, 10.0)
				So(out[0].LastAttendance, ShouldEqual, "2024-01-02")
			})
		})

		Convey("When it is built twice", func() {
			a, _ := json.Marshal(summary.Build(records, events, summary.Options{PerPersonLimit: 1}))
			b, _ := json.Marshal(summary.Build(records, events, summary.Options{PerPersonLimit: 1}))

			Convey("Then the output is byte-identical", func() {
				So(string(a), ShouldEqual, string(b))
			})
		})
	})
}

func TestBuildLimit(t *testing.T) {
	Convey("Given three records for one participant", t, func() {
		records := []model.AttendanceRecord{
			{Name: "A", Event: "E1", Timestamp: "2024-01-01T08:00:00Z"},
			{Name: "A", Event: "E3", Timestamp: "2024-01-03T08:00:00Z"},
			{Name: "A", Event: "E2", Timestamp: "2024-01-02T08:00:00Z"},
		}
		events := []model.Event{
			{Name: "E1", Points: 1, Date: "2024-01-01"},
			{Name: "E2", Points: 2, Date: "2024-01-02"},
			{Name: "E3", Points: 3, Date: "2024-01-03"},
		}

		Convey("When the per-person limit is two", func() {
			out := summary.Build(records, events, summary.Options{PerPersonLimit: 2})

			Convey("Then only the two newest are retained", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].AttendanceCount, ShouldEqual, 2)
				So(out[0].TotalPoints, ShouldEqual, 5.0)
				So(out[0].Events[0].EventName, ShouldEqual, "E3")
				So(out[0].Events[1].EventName, ShouldEqual, "E2")
				So(out[0].LastAttendance, ShouldEqual, "2024-01-03")
			})
		})

		Convey("When no limit is set", func() {
			out := summary.Build(records, events, summary.Options{})

			Convey("Then every record counts in input order", func() {
				So(out[0].AttendanceCount, ShouldEqual, 3)
				So(out[0].TotalPoints, ShouldEqual, 6.0)
				So(out[0].Events[0].EventName, ShouldEqual, "E1")
			})
		})
	})
}

func TestBuildJoin(t *testing.T) {
	Convey("Given a record whose event is unknown", t, func() {
		records := []model.AttendanceRecord{{Name: "B", Event: "Ghost", Date: "2024-05-05", Timestamp: "2024-05-05"}}

		Convey("When the summary is built", func() {
			out := summary.Build(records, []model.Event{{Name: "E1", Points: 9}}, summary.Options{})

			Convey("Then points resolve to zero and the record date is used", func() {
				So(out[0].TotalPoints, ShouldEqual, 0.0)
				So(out[0].Events[0].Date, ShouldEqual, "2024-05-05")
				So(out[0].LastAttendance, ShouldEqual, "2024-05-05")
			})
		})
	})

	Convey("Given duplicate event names", t, func() {
		events := []model.Event{{Name: "E1", Points: 4}, {Name: "E1", Points: 100}}
		out := summary.Build([]model.AttendanceRecord{{Name: "C", Event: "E1"}}, events, summary.Options{})

		Convey("Then the first event wins", func() {
			So(out[0].TotalPoints, ShouldEqual, 4.0)
		})
	})

	Convey("Given records without a name or event", t, func() {
		out := summary.Build([]model.AttendanceRecord{{Name: "", Event: "E1"}, {Name: "D"}}, nil, summary.Options{})

		Convey("Then they do not qualify", func() {
			So(out, ShouldBeEmpty)
		})
	})
}

func TestBuildFilters(t *testing.T) {
	Convey("Given records across two events and departments", t, func() {
		records := []model.AttendanceRecord{
			{Name: "A", Department: "HR", Event: "Old", Timestamp: "2024-01-01"},
			{Name: "A", Department: "HR", Event: "New", Timestamp: "2024-03-01"},
			{Name: "B", Department: "IT", Event: "New", Timestamp: "2024-03-01"},
		}
		events := []model.Event{
			{Name: "Old", Points: 7, Date: "2024-01-01"},
			{Name: "New", Points: 3, Date: "2024-03-01"},
		}

		Convey("When DateFrom is after the old event", func() {
			out := summary.Build(records, events, summary.Options{DateFrom: "2024-02-01"})

			Convey("Then the old event is excluded from the totals", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0].Name, ShouldEqual, "A")
				So(out[0].AttendanceCount, ShouldEqual, 1)
				So(out[0].TotalPoints, ShouldEqual, 3.0)
			})
		})

		Convey("When DateTo equals an event date", func() {
			out := summary.Build(records, events, summary.Options{DateTo: "2024-01-01"})

			Convey("Then the bound is inclusive", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].TotalPoints, ShouldEqual, 7.0)
			})
		})

		Convey("When filtering by event and department", func() {
			So(len(summary.Build(records, events, summary.Options{Event: "Old"})), ShouldEqual, 1)
			out := summary.Build(records, events, summary.Options{Department: "IT"})
			So(len(out), ShouldEqual, 1)
			So(out[0].Name, ShouldEqual, "B")
		})

		Convey("When totals tie", func() {
			out := summary.Build(records, events, summary.Options{Event: "New"})

			Convey("Then names break the tie ascending", func() {
				So(out[0].Name, ShouldEqual, "A")
				So(out[1].Name, ShouldEqual, "B")
			})
		})
	})
}

func TestViews(t *testing.T) {
	Convey("Given a built summary", t, func() {
		records := []model.AttendanceRecord{
			{Name: "Alice", Position: "Engineer", Department: "IT", Event: "E1", Timestamp: "2024-01-01T10:00:00Z"},
			{Name: "Alice", Position: "Engineer", Department: "IT", Event: "E2", Timestamp: "2024-01-05T10:00:00Z"},
			{Name: "Bob", Position: "Clerk", Department: "", Event: "E1", Timestamp: "2024-01-02T10:00:00Z"},
		}
		events := []model.Event{
			{Name: "E1", Points: 2, Date: "2024-01-01"},
			{Name: "E2", Points: 5, Date: "2024-01-05"},
			{Name: "E1", Points: 9, Date: "2024-09-09"},
		}
		out := summary.Build(records, events, summary.Options{})

		Convey("Then statistics count participants and round the average", func() {
			st := summary.Statistics(out, events, records)
			So(st.Participants, ShouldEqual, 2)
			So(st.Events, ShouldEqual, 3)
			So(st.Records, ShouldEqual, 3)
			So(st.AveragePoints, ShouldEqual, 4.5)
			So(summary.Statistics(nil, nil, nil).AveragePoints, ShouldEqual, 0.0)
		})

		Convey("Then search matches any text column case-insensitively", func() {
			So(len(summary.Search(out, "ENGINEER")), ShouldEqual, 1)
			So(len(summary.Search(out, "it")), ShouldEqual, 1)
			So(len(summary.Search(out, " ")), ShouldEqual, 2)
			So(summary.Search(out, "nobody"), ShouldBeEmpty)
		})

		Convey("Then participant detail lists events newest first", func() {
			p, err := summary.Participant(out, "Alice", summary.Options{})
			So(err, ShouldBeNil)
			So(p.Events[0].EventName, ShouldEqual, "E2")
			So(out[0].Events[0].EventName, ShouldEqual, "E1")

			_, err = summary.Participant(out, "Carol", summary.Options{})
			So(err, ShouldEqual, summary.ErrParticipantNotFound)
		})

		Convey("Then detailed records are newest first with resolved values", func() {
			rows := summary.DetailedRecords(records, events, summary.Options{})
			So(len(rows), ShouldEqual, 3)
			So(rows[0].Event, ShouldEqual, "E2")
			So(rows[0].EventPoints, ShouldEqual, 5.0)
			So(rows[2].EventDate, ShouldEqual, "2024-01-01")
		})

		Convey("Then filter options are distinct and skip empty departments", func() {
			fc := summary.FilterOptions(events, records)
			So(fc.Events, ShouldResemble, []string{"E1", "E2"})
			So(fc.Departments, ShouldResemble, []string{"IT"})
		})

		Convey("Then CSV export starts with a BOM and a header row", func() {
			var buf bytes.Buffer
			So(summary.WriteCSV(&buf, out, summary.Options{}), ShouldBeNil)
			So(strings.HasPrefix(buf.String(), "\ufeffrank,name,position,department,count,totalPoints,lastAttendance\n"), ShouldBeTrue)
			So(buf.String(), ShouldContainSubstring, "1,Alice,Engineer,IT,2,7,2024-01-05\n")
			So(buf.String(), ShouldContainSubstring, "2,Bob,Clerk,,1,2,2024-01-01\n")
		})
	})
}
