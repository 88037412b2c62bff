package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/envi/internal/catalog"
	"github.com/samcharles93/envi/pkg/envi"
)

func statsCmd() *cli.Command {
	var (
		file   string
		band   string
		asJSON bool
	)

	return &cli.Command{
		Name:  "stats",
		Usage: "Print min, max, mean and standard deviation per band",
		Flags: []cli.Flag{
			fileFlag(&file),
			&cli.StringFlag{
				Name:        "band",
				Aliases:     []string{"b"},
				Usage:       "band name or index (default: every band)",
				Destination: &band,
			},
			jsonFlag(&asJSON),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := envi.Open(file, readerOptions(ctx)...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", file, err), 1)
			}
			defer func() { _ = r.Close() }()

			indices := make([]int, 0, r.NumChannels())
			if band != "" {
				idx, err := catalog.ResolveBand(r, band)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: band %q: %v", band, err), 1)
				}
				indices = append(indices, idx)
			} else {
				for i := range r.NumChannels() {
					indices = append(indices, i)
				}
			}

			all := make([]catalog.BandStats, 0, len(indices))
			for _, i := range indices {
				s, _, err := catalog.ReadBand(r, i)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: read band %d: %v", i, err), 1)
				}
				all = append(all, s)
			}

			out := stdout(cmd)
			if asJSON {
				return writeJSON(out, all)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "BAND\tNAME\tCOUNT\tNAN\tMIN\tMAX\tMEAN\tSTDDEV")
			for _, s := range all {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%g\t%g\t%g\t%g\n",
					s.Index, s.Name, s.Count, s.NaN, s.Min, s.Max, s.Mean, s.StdDev)
			}
			return tw.Flush()
		},
	}
}
