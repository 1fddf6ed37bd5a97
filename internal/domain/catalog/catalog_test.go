package catalog_test

import (
	"testing"

	"github.com/okian/tally/internal/domain/catalog"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() []model.Event {
	return []model.Event{
		{ID: "1", Name: "Go Workshop", Category: "Training", Organizer: "HR", Status: model.StatusUpcoming},
		{ID: "2", Name: "Town Hall", Category: "Meeting", Organizer: "CEO Office", Status: model.StatusCompleted, Description: "quarterly update"},
		{ID: "3", Name: "Safety Drill", Category: "Training", Organizer: "Facilities", Status: model.StatusCancelled},
		{ID: "4", Name: "Blood Drive", Category: "", Organizer: "HR", Status: model.StatusNone},
		{ID: "5", Name: "Code Review Clinic", Category: "Training", Organizer: "Engineering", Status: model.StatusOngoing},
	}
}

func TestApply(t *testing.T) {
	Convey("Given a list of events", t, func() {
		events := sample()

		Convey("When filtering by status", func() {
			got := catalog.Apply(events, catalog.Filter{Status: model.StatusCompleted})
			So(got, ShouldHaveLength, 1)
			So(got[0].ID, ShouldEqual, "2")
		})

		Convey("When filtering by category and query", func() {
			got := catalog.Apply(events, catalog.Filter{Category: "Training", Query: "  ENGINEERING "})
			So(got, ShouldHaveLength, 1)
			So(got[0].ID, ShouldEqual, "5")
		})

		Convey("When the query matches a description", func() {
			got := catalog.Apply(events, catalog.Filter{Query: "quarterly"})
			So(got, ShouldHaveLength, 1)
			So(got[0].Name, ShouldEqual, "Town Hall")
		})

		Convey("When the filter is empty", func() {
			So(catalog.Apply(events, catalog.Filter{}), ShouldHaveLength, len(events))
		})
	})
}

func TestViews(t *testing.T) {
	Convey("Given a list of events", t, func() {
		events := sample()

		Convey("Then available events exclude completed and cancelled", func() {
			got := catalog.Available(events)
			ids := make([]string, 0, len(got))
			for _, ev := range got {
				ids = append(ids, ev.ID)
			}
			So(ids, ShouldResemble, []string{"1", "4", "5"})
		})

		Convey("Then categories are distinct, non-empty and sorted", func() {
			So(catalog.Categories(events), ShouldResemble, []string{"Meeting", "Training"})
		})

		Convey("Then stats count each status", func() {
			So(catalog.Stats(events), ShouldResemble, model.EventStats{
				Total: 5, Upcoming: 1, Ongoing: 1, Completed: 1, Cancelled: 1,
			})
		})

		Convey("When statuses come from the sheet in mixed case", func() {
			raw := normalize.Events([]model.RemoteRecord{
				{"ID": "a", "Name": "Kickoff", "Status": "Active"},
				{"ID": "b", "Name": "Retro", "Status": "COMPLETED"},
				{"ID": "c", "Name": "Demo", "Status": "Upcoming"},
			})

			Convey("Then availability and stats use the folded values", func() {
				ids := []string{}
				for _, ev := range catalog.Available(raw) {
					ids = append(ids, ev.ID)
				}
				So(ids, ShouldResemble, []string{"a", "c"})
				So(catalog.Stats(raw), ShouldResemble, model.EventStats{Total: 3, Upcoming: 1, Completed: 1})
				So(catalog.Apply(raw, catalog.Filter{Status: model.StatusCompleted}), ShouldHaveLength, 1)
			})
		})

		Convey("When an older cache holds an upper-case status", func() {
			So(catalog.Available([]model.Event{{ID: "x", Status: "ONGOING"}}), ShouldHaveLength, 1)
		})

		Convey("Then lookups find by id and name", func() {
			ev, idx, ok := catalog.Find(events, "3")
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, 2)
			So(ev.Name, ShouldEqual, "Safety Drill")

			_, _, ok = catalog.Find(events, "missing")
			So(ok, ShouldBeFalse)

			ev, ok = catalog.FindByName(events, "Town Hall")
			So(ok, ShouldBeTrue)
			So(ev.ID, ShouldEqual, "2")
		})
	})
}
