package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/envi/internal/catalog"
	"github.com/samcharles93/envi/internal/logger"
	"github.com/samcharles93/envi/pkg/envi"
)

func convertCmd() *cli.Command {
	var (
		in          string
		out         string
		outType     string
		description string
	)

	return &cli.Command{
		Name:  "convert",
		Usage: "Rewrite a raster with another sample type, copying bands and metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "input data file",
				Destination: &in,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output data file (its header is written next to it)",
				Destination: &out,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "output sample type, by name (float32, uint16, ...) or ENVI code (default: keep)",
				Destination: &outType,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "output description (default: keep)",
				Destination: &description,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyConvertConfig(cmd, cfg, &outType)

			opts := catalog.ConvertOptions{
				Description: description,
				Options:     readerOptions(ctx),
			}
			if outType != "" {
				dt, err := envi.ParseDataType(outType)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: --type: %v", err), 1)
				}
				opts.DataType = dt
			}

			if err := catalog.Convert(in, out, opts); err != nil {
				return cli.Exit(fmt.Sprintf("error: convert %s: %v", in, err), 1)
			}
			if opts.DataType == 0 {
				log.Info("converted raster", "in", in, "out", out)
				return nil
			}
			log.Info("converted raster", "in", in, "out", out, "data_type", opts.DataType.String())
			return nil
		},
	}
}
