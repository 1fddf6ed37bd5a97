package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
)

// Output formats for report commands.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func cmdSummary(e *env) *cli.Command {
	var q types.SummaryQuery

	return &cli.Command{
		Name:  "summary",
		Usage: "Print ranked participant summaries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "inclusive lower date bound", Destination: &q.From},
			&cli.StringFlag{Name: "to", Usage: "inclusive upper date bound", Destination: &q.To},
			&cli.StringFlag{Name: "event", Usage: "only this event name", Destination: &q.Event},
			&cli.StringFlag{Name: "department", Usage: "only this department", Destination: &q.Department},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "name or department contains", Destination: &q.Search},
			&cli.IntFlag{Name: "limit", Usage: "most recent records counted per person; 0 disables, -1 uses per_person_limit", Value: -1},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "table, csv or json; table on a terminal, csv otherwise"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			q.Limit = int(c.Int("limit"))
			return e.summary(ctx, q, c.String("format"))
		},
	}
}

func (e *env) summary(ctx context.Context, q types.SummaryQuery, format string) error {
	if format == "" {
		format = defaultFormat(e.out)
	}
	switch format {
	case formatTable, formatCSV, formatJSON:
	default:
		return goerr.Wrap(ErrUnknownFormat, "summary", goerr.V("format", format))
	}

	svc, err := e.loaded(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	if format == formatCSV {
		return svc.WriteSummaryCSV(e.out, q)
	}
	list, err := svc.Summary(q)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(e.out, list)
	}
	return writeSummaryTable(e.out, list)
}

// defaultFormat picks a table for terminals and CSV for pipes and files.
func defaultFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return formatTable
	}
	return formatCSV
}

func writeSummaryTable(w io.Writer, list []model.ParticipantSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tDEPARTMENT\tCOUNT\tPOINTS\tLAST")
	for i, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i+1, p.Name, orDash(p.Department), p.AttendanceCount, humanize.Ftoa(p.TotalPoints), orDash(p.LastAttendance))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
