package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/envi/internal/catalog"
)

const envDataDir = "ENVI_DATA_DIR"

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// resolveDataDir picks the directory to serve: the flag, then ENVI_DATA_DIR.
func resolveDataDir(flag string) (string, error) {
	dir := strings.TrimSpace(flag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(envDataDir))
	}
	if dir == "" {
		return "", fmt.Errorf("--data-dir is required unless %s is set", envDataDir)
	}
	st, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return "", fmt.Errorf("data path is not a directory: %s", dir)
	}
	return filepath.Clean(dir), nil
}

// expandInputs replaces directory arguments by the rasters they contain.
func expandInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one raster path is required")
	}
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, filepath.Clean(arg))
			continue
		}
		found, err := catalog.Discover(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
