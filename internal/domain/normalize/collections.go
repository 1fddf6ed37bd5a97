package normalize

import (
	"strconv"

	"github.com/okian/tally/internal/domain/model"
)

var (
	events  = New(EventFields)
	users   = New(UserFields)
	records = New(RecordFields)
)

// Event normalizes one events row. index is the row position and names the
// event when the sheet has no id column value.
func Event(row model.RemoteRecord, index int) model.Event {
	id := events.String(row, FieldID, "")
	if id == "" {
		id = "row-" + strconv.Itoa(index+1)
	}
	return model.Event{
		ID:          id,
		Name:        events.String(row, FieldName, ""),
		Category:    events.String(row, FieldCategory, DefaultCategory),
		Points:      events.Int(row, FieldPoints),
		Date:        events.String(row, FieldDate, ""),
		Organizer:   events.String(row, FieldOrganizer, DefaultOrganizer),
		Status:      model.Status(events.String(row, FieldStatus, string(DefaultStatus))).Canonical(),
		Description: events.String(row, FieldDescription, ""),
		UpdatedAt:   events.String(row, FieldUpdatedAt, ""),
	}
}

// Events normalizes an events collection. Nil rows are skipped.
func Events(rows []model.RemoteRecord) []model.Event {
	out := make([]model.Event, 0, len(rows))
	for i, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, Event(row, i))
	}
	return out
}

// User normalizes one directory row.
func User(row model.RemoteRecord) model.User {
	return model.User{
		PSCode:     users.String(row, FieldPSCode, ""),
		Name:       users.String(row, FieldName, ""),
		Position:   users.String(row, FieldPosition, ""),
		Department: users.String(row, FieldDepartment, ""),
	}
}

// Users normalizes a directory collection. Nil rows are skipped.
func Users(rows []model.RemoteRecord) []model.User {
	out := make([]model.User, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, User(row))
	}
	return out
}

// Record normalizes one attendance row.
func Record(row model.RemoteRecord) model.AttendanceRecord {
	return model.AttendanceRecord{
		Name:       records.String(row, FieldName, ""),
		Position:   records.String(row, FieldPosition, ""),
		Department: records.String(row, FieldDepartment, ""),
		Event:      records.String(row, FieldEvent, ""),
		Points:     records.Float(row, FieldPoints),
		Date:       records.String(row, FieldDate, ""),
		Timestamp:  records.String(row, FieldTimestamp, ""),
	}
}

// Records normalizes an attendance collection. Nil rows are skipped.
func Records(rows []model.RemoteRecord) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, Record(row))
	}
	return out
}
