package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/envi/internal/logger"
	"github.com/samcharles93/envi/pkg/envi"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "envi",
		Usage:  "Inspect, convert and serve ENVI raster files",
		Flags:  globalFlags(),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			metaCmd(),
			statsCmd(),
			convertCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// setup loads the config file and stores the logger in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg = LoadConfig(configFile)
	applyLoggingConfig(cmd, cfg)
	if debug {
		logLevel = "debug"
	}
	log, err := logger.Build(stderr(cmd), logFormat, logLevel)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}

// readerOptions returns the codec options derived from global flags.
func readerOptions(ctx context.Context) []envi.Option {
	return []envi.Option{
		envi.WithLogger(logger.FromContext(ctx)),
		envi.WithMmap(!noMmap),
	}
}
