package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/okian/tally/internal/domain/types"
)

func cmdRefresh(e *env) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Load every collection once and report where each came from",
		Action: func(ctx context.Context, _ *cli.Command) error {
			svc, err := e.openService(ctx)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			report, err := svc.Refresh(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLLECTION\tSOURCE\tCOUNT\tACCEPTED\tCACHED\tERROR")
			for _, r := range []types.LoadResult{report.Events, report.Users, report.Records} {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
					r.Collection, orDash(r.Source), humanize.Comma(int64(r.Count)), r.Accepted, cachedAge(r.CachedAt), orDash(r.Error))
			}
			return tw.Flush()
		},
	}
}

func cmdPing(e *env) *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Run the backend connectivity test",
		Action: func(ctx context.Context, _ *cli.Command) error {
			svc, err := e.openService(ctx)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			raw, err := svc.Ping(ctx)
			if err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				v = string(raw)
			}
			return writeJSON(e.out, v)
		},
	}
}

// cachedAge renders an RFC 3339 stamp as a relative time.
func cachedAge(stamp string) string {
	at, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return "-"
	}
	return humanize.Time(at)
}
