package summary

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/okian/tally/internal/domain/model"
)

// csvBOM lets spreadsheet applications detect UTF-8.
const csvBOM = "\ufeff"

var csvHeader = []string{"rank", "name", "position", "department", "count", "totalPoints", "lastAttendance"}

// WriteCSV writes ranked summaries as CSV prefixed with a UTF-8 byte order mark.
// Dates are rendered as calendar dates when they parse.
func WriteCSV(w io.Writer, summaries []model.ParticipantSummary, opts Options) error {
	if _, err := io.WriteString(w, csvBOM); err != nil {
		return err
	}
	cal := opts.calendar()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, p := range summaries {
		last := ""
		if p.LastAttendance != "" {
			last = cal.Canonical(p.LastAttendance)
		}
		row := []string{
			strconv.Itoa(i + 1),
			p.Name,
			p.Position,
			p.Department,
			strconv.Itoa(p.AttendanceCount),
			strconv.FormatFloat(p.TotalPoints, 'f', -1, 64),
			last,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
