package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/okian/tally/internal/domain/catalog"
	"github.com/okian/tally/internal/domain/model"
)

func cmdEvents(e *env) *cli.Command {
	var f catalog.Filter
	var status string
	var available, asJSON bool

	return &cli.Command{
		Name:  "events",
		Usage: "List events",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "only this status", Destination: &status},
			&cli.StringFlag{Name: "category", Usage: "only this category", Destination: &f.Category},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "name, description or organizer contains", Destination: &f.Query},
			&cli.BoolFlag{Name: "available", Usage: "only events still accepting attendance", Destination: &available},
			&cli.BoolFlag{Name: "json", Usage: "print JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			f.Status = model.Status(status)
			svc, err := e.loaded(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			events := svc.Events(f)
			if available {
				events = catalog.Available(events)
			}
			if asJSON {
				return writeJSON(e.out, events)
			}
			return writeEventTable(e.out, events)
		},
	}
}

func writeEventTable(w io.Writer, events []model.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPOINTS\tDATE\tSTATUS")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			ev.ID, ev.Name, orDash(ev.Category), ev.Points, orDash(ev.Date), orDash(string(ev.Status)))
	}
	return tw.Flush()
}
