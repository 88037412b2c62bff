package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/envi/pkg/envi"
)

type metaValue struct {
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Values []string `json:"values"`
}

func metaCmd() *cli.Command {
	var (
		file   string
		key    string
		asJSON bool
	)

	return &cli.Command{
		Name:  "meta",
		Usage: "List the free-form header entries of a raster, or split one of them",
		Flags: []cli.Flag{
			fileFlag(&file),
			&cli.StringFlag{
				Name:        "key",
				Aliases:     []string{"k"},
				Usage:       "only print this key, one list element per line",
				Destination: &key,
			},
			jsonFlag(&asJSON),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := envi.Open(file, readerOptions(ctx)...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", file, err), 1)
			}
			defer func() { _ = r.Close() }()

			md := r.Metadata()
			out := stdout(cmd)

			if key != "" {
				if !md.Has(key) {
					return cli.Exit(fmt.Sprintf("error: %s has no metadata key %q", file, key), 1)
				}
				mv := metaValue{Key: key, Value: md.Get(key), Values: md.Values(key)}
				if asJSON {
					return writeJSON(out, mv)
				}
				for _, v := range mv.Values {
					_, _ = fmt.Fprintln(out, v)
				}
				return nil
			}

			if asJSON {
				all := make([]metaValue, 0, md.Len())
				for k, v := range md.All() {
					all = append(all, metaValue{Key: k, Value: v, Values: md.Values(k)})
				}
				return writeJSON(out, all)
			}
			for k, v := range md.All() {
				_, _ = fmt.Fprintf(out, "%s = %s\n", k, v)
			}
			return nil
		},
	}
}
