package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/envi/internal/catalog"
	"github.com/samcharles93/envi/internal/logger"
)

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header of one or more rasters (directories are scanned)",
		ArgsUsage: "PATH...",
		Flags:     []cli.Flag{jsonFlag(&asJSON)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			paths, err := expandInputs(cmd.Args().Slice())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			entries, err := catalog.Load(ctx, paths, readerOptions(ctx)...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Debug("inspected rasters", "count", len(entries))

			out := stdout(cmd)
			if asJSON {
				return writeJSON(out, entries)
			}
			for i, e := range entries {
				if i > 0 {
					_, _ = fmt.Fprintln(out)
				}
				printEntry(out, e)
			}
			return nil
		},
	}
}

func printEntry(w io.Writer, e *catalog.Entry) {
	_, _ = fmt.Fprintf(w, "%s\n", e.Path)
	_, _ = fmt.Fprintf(w, "  header:      %s\n", e.HeaderPath)
	if e.Description != "" {
		_, _ = fmt.Fprintf(w, "  description: %s\n", e.Description)
	}
	_, _ = fmt.Fprintf(w, "  extent:      %d lines x %d samples\n", e.Lines, e.Samples)
	_, _ = fmt.Fprintf(w, "  data type:   %s\n", e.DataType)
	if e.Offset != 0 {
		_, _ = fmt.Fprintf(w, "  offset:      %d\n", e.Offset)
	}
	_, _ = fmt.Fprintf(w, "  size:        %d bytes\n", e.Size)
	_, _ = fmt.Fprintf(w, "  bands (%d):   %s\n", len(e.Bands), strings.Join(e.Bands, ", "))
	if len(e.Metadata) > 0 {
		_, _ = fmt.Fprintf(w, "  metadata:\n")
		for _, m := range e.Metadata {
			_, _ = fmt.Fprintf(w, "    %s = %s\n", m.Key, m.Value)
		}
	}
}
